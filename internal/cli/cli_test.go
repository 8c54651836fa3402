package cli_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gopkg.in/yaml.v3"

	multipole "github.com/njchilds90/gomultipole"
	"github.com/njchilds90/gomultipole/internal/cli"
	"github.com/njchilds90/gomultipole/internal/config"
)

var _ = Describe("NewMultipoleCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := cli.NewMultipoleCmd()
		Expect(cmd.Use).To(Equal("multipole"))
	})

	It("has every subcommand", func() {
		cmd := cli.NewMultipoleCmd()
		cmds := cmd.Commands()
		subcommands := make([]string, 0, len(cmds))
		for _, sub := range cmds {
			subcommands = append(subcommands, sub.Name())
		}
		Expect(subcommands).To(ContainElements("q", "deriv", "pairings", "phi", "verify", "serve", "config", "version"))
	})
})

var _ = Describe("Command execution", func() {
	var (
		tmpDir string
		stdout *bytes.Buffer
		stderr *bytes.Buffer
	)

	execute := func(args ...string) error {
		cmd := cli.NewMultipoleCmd()
		cmd.SetOut(stdout)
		cmd.SetErr(stderr)
		cmd.SetArgs(append(args, "--config", tmpDir))
		return cmd.Execute()
	}

	BeforeEach(func() {
		tmpDir = GinkgoT().TempDir()
		stdout = &bytes.Buffer{}
		stderr = &bytes.Buffer{}
	})

	Describe("q", func() {
		It("prints the quadrupole tensor", func() {
			Expect(execute("q", "2")).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("3*xa(i1)*xa(i2)"))
			Expect(stdout.String()).To(ContainSubstring("delta(i1, i2)"))
		})

		It("uses the given index labels", func() {
			Expect(execute("q", "2", "--indices", "a,b")).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("xa(a)*xa(b)"))
		})

		It("rejects repeated labels", func() {
			Expect(execute("q", "2", "--indices", "a,a")).To(MatchError(ContainSubstring("invalid index set")))
		})

		It("renders JSON", func() {
			Expect(execute("q", "1", "-o", "json")).To(Succeed())
			var m map[string]interface{}
			Expect(json.Unmarshal(stdout.Bytes(), &m)).To(Succeed())
			Expect(m).To(HaveKeyWithValue("type", "app"))
		})

		It("rejects orders above the configured maximum", func() {
			err := execute("q", "3", "--max-order", "2")
			Expect(err).To(MatchError(multipole.ErrOrderTooLarge))
		})

		It("rejects a non-integer order", func() {
			Expect(execute("q", "two")).To(MatchError(ContainSubstring("not an integer")))
		})

		It("rejects an unknown output format", func() {
			Expect(execute("q", "1", "-o", "html")).To(MatchError(config.ErrInvalidConfig))
		})
	})

	Describe("deriv", func() {
		It("prints 1/r for order zero", func() {
			Expect(execute("deriv", "0")).To(Succeed())
			Expect(stdout.String()).To(Equal("r0^-1\n"))
		})

		It("renders LaTeX", func() {
			Expect(execute("deriv", "1", "-o", "latex")).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("r0"))
		})
	})

	Describe("pairings", func() {
		It("lists the pairings and their count", func() {
			Expect(execute("pairings", "4", "2")).To(Succeed())
			Expect(stdout.String()).To(Equal("{(0,1)(2,3)}\n{(0,2)(1,3)}\n{(0,3)(1,2)}\ncount 3\n"))
		})

		It("renders YAML", func() {
			Expect(execute("pairings", "4", "1", "-o", "yaml")).To(Succeed())
			var res multipole.PairingsResult
			Expect(yaml.Unmarshal(stdout.Bytes(), &res)).To(Succeed())
			Expect(res.Count).To(Equal("6"))
			Expect(res.Pairings).To(HaveLen(6))
		})
	})

	Describe("phi", func() {
		It("prints the dipole term", func() {
			Expect(execute("phi", "1")).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("dot(xa, n)"))
		})

		It("agrees between forms through order 3", func() {
			Expect(execute("phi", "3", "--series")).To(Succeed())
			taylor := stdout.String()
			stdout.Reset()
			Expect(execute("phi", "3", "--series", "--form", "moment")).To(Succeed())
			Expect(stdout.String()).To(Equal(taylor))
		})

		It("rejects an unknown form", func() {
			Expect(execute("phi", "1", "--form", "spherical")).To(MatchError(ContainSubstring("unknown form")))
		})
	})

	Describe("verify", func() {
		It("prints a report table", func() {
			Expect(execute("verify", "2")).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("EQUIVALENT"))
			Expect(stdout.String()).NotTo(ContainSubstring("no"))
		})

		It("marks the order-4 disagreement without failing strict mode", func() {
			Expect(execute("verify", "4", "--strict")).To(Succeed())
			lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
			Expect(lines).To(HaveLen(6))
			Expect(lines[5]).To(HavePrefix("4"))
			Expect(strings.TrimSpace(lines[5])).To(HaveSuffix("no"))
		})

		It("renders JSON reports", func() {
			Expect(execute("verify", "1", "-o", "json", "--strict")).To(Succeed())
			var reports []map[string]interface{}
			Expect(json.Unmarshal(stdout.Bytes(), &reports)).To(Succeed())
			Expect(reports).To(HaveLen(2))
			Expect(reports[1]).To(HaveKeyWithValue("symmetric", true))
		})
	})

	Describe("config", func() {
		It("writes a default config file once", func() {
			Expect(execute("config", "init")).To(Succeed())
			_, err := os.Stat(filepath.Join(tmpDir, config.FileName))
			Expect(err).NotTo(HaveOccurred())

			Expect(execute("config", "init")).To(HaveOccurred())
			Expect(execute("config", "init", "--force")).To(Succeed())
		})

		It("shows the effective config", func() {
			data := []byte("[engine]\nworkers = 3\n")
			Expect(os.WriteFile(filepath.Join(tmpDir, config.FileName), data, 0o600)).To(Succeed())

			Expect(execute("config", "show")).To(Succeed())
			cfg, err := config.ParseConfigTOML(stdout.Bytes())
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Engine.Workers).To(Equal(3))
		})

		It("applies file values to commands", func() {
			data := []byte("[output]\nformat = \"latex\"\n")
			Expect(os.WriteFile(filepath.Join(tmpDir, config.FileName), data, 0o600)).To(Succeed())

			Expect(execute("q", "2")).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring("delta_{i1 i2}"))
		})
	})

	Describe("serve", func() {
		It("fails when the log file cannot be opened", func() {
			err := execute("serve", "--log-file", filepath.Join(tmpDir, "missing", "server.log"))
			Expect(err).To(MatchError(ContainSubstring("opening log file")))
		})

		It("fails on an unusable listen address", func() {
			Expect(execute("serve", "--listen", "localhost:-1")).To(HaveOccurred())
		})
	})

	Describe("version", func() {
		It("prints the version", func() {
			Expect(execute("version")).To(Succeed())
			Expect(stdout.String()).To(ContainSubstring(multipole.Version))
		})
	})
})
