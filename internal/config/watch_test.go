package config_test

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/njchilds90/gomultipole/internal/config"
	"github.com/njchilds90/gomultipole/internal/logger"
)

// replaceFile writes data next to path and renames it into place, so the
// watcher sees a single create event with the full contents.
func replaceFile(path string, data []byte) {
	tmp := path + ".tmp"
	Expect(os.WriteFile(tmp, data, 0o600)).To(Succeed())
	Expect(os.Rename(tmp, path)).To(Succeed())
}

var _ = Describe("Watch", func() {
	var (
		path   string
		ctx    context.Context
		cancel context.CancelFunc
	)

	BeforeEach(func() {
		path = filepath.Join(GinkgoT().TempDir(), config.FileName)
		Expect(os.WriteFile(path, []byte("[engine]\nworkers = 2\n"), 0o600)).To(Succeed())
		ctx, cancel = context.WithCancel(context.Background())
		DeferCleanup(cancel)
	})

	It("sends the reloaded config after a write", func() {
		updates, err := config.Watch(ctx, path, logger.Nop(), nil)
		Expect(err).NotTo(HaveOccurred())

		replaceFile(path, []byte("[engine]\nworkers = 6\n"))

		var cfg *config.Config
		Eventually(updates, 5*time.Second).Should(Receive(&cfg))
		Expect(cfg.Engine.Workers).To(Equal(6))
	})

	It("keeps command-line flags across reloads", func() {
		cmd := &cobra.Command{Use: "serve"}
		var workers, passes int
		config.AddIntFlag(cmd, config.Flags, config.FlagWorkers, &workers)
		config.AddIntFlag(cmd, config.Flags, config.FlagMaxPasses, &passes)
		Expect(cmd.Flags().Set("workers", "3")).To(Succeed())
		keys := []string{config.FlagWorkers, config.FlagMaxPasses}

		updates, err := config.Watch(ctx, path, logger.Nop(), func() (*config.Config, error) {
			return config.LoadWithFlags(path, cmd, keys)
		})
		Expect(err).NotTo(HaveOccurred())

		replaceFile(path, []byte("[engine]\nworkers = 6\nmax_passes = 12\n"))

		var cfg *config.Config
		Eventually(updates, 5*time.Second).Should(Receive(&cfg))
		Expect(cfg.Engine.Workers).To(Equal(3))
		Expect(cfg.Engine.MaxPasses).To(Equal(12))
	})

	It("skips invalid edits", func() {
		updates, err := config.Watch(ctx, path, logger.Nop(), nil)
		Expect(err).NotTo(HaveOccurred())

		replaceFile(path, []byte("[log]\nformat = \"xml\"\n"))
		Consistently(updates, 300*time.Millisecond).ShouldNot(Receive())
	})

	It("ignores other files in the directory", func() {
		updates, err := config.Watch(ctx, path, logger.Nop(), nil)
		Expect(err).NotTo(HaveOccurred())

		other := filepath.Join(filepath.Dir(path), "notes.txt")
		Expect(os.WriteFile(other, []byte("hello"), 0o600)).To(Succeed())
		Consistently(updates, 300*time.Millisecond).ShouldNot(Receive())
	})

	It("closes the channel when the context ends", func() {
		updates, err := config.Watch(ctx, path, logger.Nop(), nil)
		Expect(err).NotTo(HaveOccurred())
		cancel()
		Eventually(updates, 2*time.Second).Should(BeClosed())
	})

	It("fails for a missing directory", func() {
		_, err := config.Watch(ctx, filepath.Join(path, "nope", config.FileName), logger.Nop(), nil)
		Expect(err).To(HaveOccurred())
	})
})
