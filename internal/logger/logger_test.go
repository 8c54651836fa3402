package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/njchilds90/gomultipole/internal/logger"
)

func TestLogger(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Logger Suite")
}

func decode(buf *bytes.Buffer) map[string]any {
	var parsed map[string]any
	Expect(json.Unmarshal([]byte(strings.TrimSpace(buf.String())), &parsed)).To(Succeed())
	return parsed
}

var _ = Describe("Logger", func() {
	Describe("New", func() {
		It("writes text by default", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf))
			l.Info("reduced", "order", 4)

			Expect(buf.String()).To(ContainSubstring("reduced"))
			Expect(buf.String()).To(ContainSubstring("order=4"))
		})

		It("filters debug unless enabled", func() {
			var quiet, loud bytes.Buffer
			logger.New(logger.WithWriter(&quiet)).Debug("hidden")
			logger.New(logger.WithWriter(&loud), logger.WithDebug(true)).Debug("shown")

			Expect(quiet.String()).To(BeEmpty())
			Expect(loud.String()).To(ContainSubstring("shown"))
		})

		It("writes JSON", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatJSON))
			l.Info("tool call", "tool", "q_tensor", "passes", 3)

			parsed := decode(&buf)
			Expect(parsed["msg"]).To(Equal("tool call"))
			Expect(parsed["tool"]).To(Equal("q_tensor"))
			Expect(parsed["passes"]).To(BeNumerically("==", 3))
		})

		It("writes pretty output", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatPretty))
			l.Info("pretty output")

			Expect(buf.String()).To(ContainSubstring("pretty output"))
		})

		It("fans out to several writers", func() {
			var buf1, buf2 bytes.Buffer
			logger.New(logger.WithWriter(&buf1, &buf2)).Info("multi")

			Expect(buf1.String()).To(ContainSubstring("multi"))
			Expect(buf2.String()).To(ContainSubstring("multi"))
		})

		It("nests group attributes", func() {
			var buf bytes.Buffer
			l := logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatJSON))
			l.WithGroup("engine").Info("configured", "max_passes", 64)

			group, ok := decode(&buf)["engine"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(group["max_passes"]).To(BeNumerically("==", 64))
		})
	})

	Describe("WithSource", func() {
		It("adds the caller to JSON records", func() {
			var buf bytes.Buffer
			logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatJSON), logger.WithSource(true)).Info("traced")

			src, ok := decode(&buf)["source"].(map[string]any)
			Expect(ok).To(BeTrue())
			Expect(src["file"]).To(HaveSuffix("logger_test.go"))
		})

		It("is off by default", func() {
			var buf bytes.Buffer
			logger.New(logger.WithWriter(&buf), logger.WithFormat(logger.FormatJSON)).Info("plain")
			Expect(decode(&buf)).NotTo(HaveKey("source"))
		})
	})

	Describe("WithFormat", func() {
		It("falls back to text for unknown formats", func() {
			var buf bytes.Buffer
			logger.New(logger.WithWriter(&buf), logger.WithFormat("xml")).Info("hello", "k", 1)
			Expect(buf.String()).To(ContainSubstring("k=1"))
		})
	})

	Describe("Nop", func() {
		It("is disabled for every level", func() {
			h := logger.Nop().Handler()
			for _, lvl := range []slog.Level{slog.LevelDebug, slog.LevelInfo, slog.LevelWarn, slog.LevelError} {
				Expect(h.Enabled(context.Background(), lvl)).To(BeFalse())
			}
		})

		It("does not panic", func() {
			Expect(func() {
				l := logger.Nop()
				l.Info("msg")
				l.With("k", "v").WithGroup("g").Error("msg")
			}).NotTo(Panic())
		})
	})

	Describe("Multi", func() {
		It("dispatches to all loggers", func() {
			var buf1, buf2 bytes.Buffer
			multi := logger.Multi(logger.New(logger.WithWriter(&buf1)), logger.New(logger.WithWriter(&buf2), logger.WithFormat(logger.FormatJSON)))
			multi.With("component", "server").Info("broadcast")

			Expect(buf1.String()).To(ContainSubstring("broadcast"))
			Expect(decode(&buf2)["component"]).To(Equal("server"))
		})

		It("skips disabled handlers", func() {
			var buf bytes.Buffer
			multi := logger.Multi(logger.Nop(), logger.New(logger.WithWriter(&buf)))
			multi.Debug("hidden")
			multi.Info("shown")

			Expect(buf.String()).NotTo(ContainSubstring("hidden"))
			Expect(buf.String()).To(ContainSubstring("shown"))
		})
	})
})
