package config_test

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/njchilds90/gomultipole/internal/config"
)

var _ = Describe("Config", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	Describe("NewDefaultConfig", func() {
		It("returns the engine defaults", func() {
			cfg := config.NewDefaultConfig()
			Expect(cfg.Engine.MaxPasses).To(Equal(64))
			Expect(cfg.Engine.Workers).To(Equal(4))
			Expect(cfg.Engine.MaxOrder).To(Equal(8))
			Expect(cfg.Log.Format).To(Equal(config.LogFormatPretty))
			Expect(cfg.Output.Format).To(Equal(config.OutputText))
			Expect(cfg.Server.Listen).To(Equal(":8080"))
		})

		It("passes validation", func() {
			Expect(config.Validate(config.NewDefaultConfig())).To(Succeed())
		})
	})

	Describe("ParseConfigTOML", func() {
		It("fills unset fields with defaults", func() {
			cfg, err := config.ParseConfigTOML([]byte("[engine]\nworkers = 2\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Engine.Workers).To(Equal(2))
			Expect(cfg.Engine.MaxPasses).To(Equal(64))
			Expect(cfg.Output.Format).To(Equal(config.OutputText))
		})

		It("reads log.source", func() {
			cfg, err := config.ParseConfigTOML([]byte("[log]\nsource = true\n"))
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Log.Source).To(BeTrue())
			Expect(config.NewDefaultConfig().Log.Source).To(BeFalse())
		})

		It("rejects unknown keys", func() {
			_, err := config.ParseConfigTOML([]byte("[engine]\nthreads = 2\n"))
			Expect(err).To(MatchError(config.ErrInvalidConfig))
		})

		It("rejects malformed TOML", func() {
			_, err := config.ParseConfigTOML([]byte("[engine\n"))
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("Validate", func() {
		DescribeTable("rejects bad settings",
			func(mutate func(*config.Config)) {
				cfg := config.NewDefaultConfig()
				mutate(cfg)
				Expect(config.Validate(cfg)).To(MatchError(config.ErrInvalidConfig))
			},
			Entry("zero passes", func(c *config.Config) { c.Engine.MaxPasses = 0 }),
			Entry("negative workers", func(c *config.Config) { c.Engine.Workers = -1 }),
			Entry("negative max order", func(c *config.Config) { c.Engine.MaxOrder = -1 }),
			Entry("unknown log format", func(c *config.Config) { c.Log.Format = "xml" }),
			Entry("unknown output format", func(c *config.Config) { c.Output.Format = "html" }),
		)

		It("rejects a nil config", func() {
			Expect(config.Validate(nil)).To(MatchError(config.ErrInvalidConfig))
		})
	})

	Describe("Save and LoadFile", func() {
		It("round-trips through the file", func() {
			path := filepath.Join(dir, config.FileName)
			cfg := config.NewDefaultConfig()
			cfg.Engine.MaxOrder = 5
			cfg.Output.Format = config.OutputLaTeX
			Expect(config.Save(path, cfg, false)).To(Succeed())

			loaded, err := config.LoadFile(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(loaded).To(Equal(cfg))
		})

		It("refuses to overwrite without the flag", func() {
			path := filepath.Join(dir, config.FileName)
			Expect(config.Save(path, config.NewDefaultConfig(), false)).To(Succeed())
			Expect(config.Save(path, config.NewDefaultConfig(), false)).To(HaveOccurred())
			Expect(config.Save(path, config.NewDefaultConfig(), true)).To(Succeed())
		})

		It("returns defaults for a missing file", func() {
			cfg, err := config.LoadFile(filepath.Join(dir, "missing.toml"))
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.NewDefaultConfig()))
		})
	})

	Describe("InitViper", func() {
		It("uses defaults when the directory has no config", func() {
			cfg, err := config.Load(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg).To(Equal(config.NewDefaultConfig()))
		})

		It("reads multipole.toml from the directory", func() {
			data := []byte("[engine]\nmax_order = 3\n\n[output]\nformat = \"json\"\n")
			Expect(os.WriteFile(filepath.Join(dir, config.FileName), data, 0o600)).To(Succeed())

			cfg, err := config.Load(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Engine.MaxOrder).To(Equal(3))
			Expect(cfg.Output.Format).To(Equal(config.OutputJSON))
			Expect(cfg.Engine.Workers).To(Equal(4))
		})

		It("fails for an explicit file that does not exist", func() {
			_, err := config.InitViper(filepath.Join(dir, "absent.toml"))
			Expect(err).To(HaveOccurred())
		})

		It("lets environment variables override the file", func() {
			data := []byte("[engine]\nworkers = 2\n")
			Expect(os.WriteFile(filepath.Join(dir, config.FileName), data, 0o600)).To(Succeed())
			GinkgoT().Setenv("MULTIPOLE_ENGINE_WORKERS", "7")

			cfg, err := config.Load(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Engine.Workers).To(Equal(7))
		})

		It("reads log.source from the environment", func() {
			GinkgoT().Setenv("MULTIPOLE_LOG_SOURCE", "true")
			cfg, err := config.Load(dir)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Log.Source).To(BeTrue())
		})

		It("validates the layered result", func() {
			GinkgoT().Setenv("MULTIPOLE_LOG_FORMAT", "xml")
			_, err := config.Load(dir)
			Expect(err).To(MatchError(config.ErrInvalidConfig))
		})
	})

	Describe("Flags", func() {
		It("registers flags with config defaults", func() {
			cmd := &cobra.Command{Use: "test"}
			var workers int
			var output string
			config.AddIntFlag(cmd, config.Flags, config.FlagWorkers, &workers)
			config.AddStringFlag(cmd, config.Flags, config.FlagOutput, &output)

			Expect(workers).To(Equal(4))
			Expect(output).To(Equal(config.OutputText))
			Expect(cmd.Flags().ShorthandLookup("o")).NotTo(BeNil())
		})

		It("ignores unknown registry keys", func() {
			cmd := &cobra.Command{Use: "test"}
			var s string
			config.AddStringFlag(cmd, config.Flags, "nope", &s)
			Expect(cmd.Flags().HasFlags()).To(BeFalse())
		})

		It("gives flags precedence over the file once bound", func() {
			data := []byte("[engine]\nmax_passes = 10\n")
			Expect(os.WriteFile(filepath.Join(dir, config.FileName), data, 0o600)).To(Succeed())

			cmd := &cobra.Command{Use: "test"}
			var passes int
			config.AddIntFlag(cmd, config.Flags, config.FlagMaxPasses, &passes)
			Expect(cmd.Flags().Set("max-passes", "20")).To(Succeed())

			v, err := config.InitViper(dir)
			Expect(err).NotTo(HaveOccurred())
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagMaxPasses, config.FlagListen})

			cfg, err := config.FromViper(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Engine.MaxPasses).To(Equal(20))
		})

		It("keeps the file value when the flag is not set", func() {
			data := []byte("[engine]\nmax_passes = 10\n")
			Expect(os.WriteFile(filepath.Join(dir, config.FileName), data, 0o600)).To(Succeed())

			cmd := &cobra.Command{Use: "test"}
			var passes int
			config.AddIntFlag(cmd, config.Flags, config.FlagMaxPasses, &passes)

			v, err := config.InitViper(dir)
			Expect(err).NotTo(HaveOccurred())
			config.BindRegisteredFlags(v, cmd, config.Flags, []string{config.FlagMaxPasses})

			cfg, err := config.FromViper(v)
			Expect(err).NotTo(HaveOccurred())
			Expect(cfg.Engine.MaxPasses).To(Equal(10))
		})
	})
})
