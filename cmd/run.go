package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/resumetools/resume-optimizer/internal/ai/gemini"
	"github.com/resumetools/resume-optimizer/internal/logger"
	"github.com/resumetools/resume-optimizer/internal/pipeline"
	"github.com/resumetools/resume-optimizer/internal/render"
	"github.com/resumetools/resume-optimizer/internal/secrets"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes = "Yes"
	PromptNo  = "No"

	defaultOutputStem = "optimized_resume"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the resume optimization pipeline",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().StringP("resume", "r", "", "path to the resume file (pdf, docx or plain text)")
	runCmd.Flags().StringP("job-description", "D", "", "job description text or path to a .txt/.pdf/.docx file")
	runCmd.Flags().StringP("output", "o", defaultOutputStem, "output file path, extension is derived from the format")
	runCmd.Flags().StringP("format", "f", "pdf", "output format: pdf or docx")
	runCmd.Flags().BoolP("yes", "y", false, "do not ask for confirmation before overwriting output files")
	runCmd.Flags().Bool("save-json", false, "save the optimized resume JSON next to the output")

	runCmd.MarkFlagRequired("resume")
	runCmd.MarkFlagRequired("job-description")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the resume-optimizer", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	format := strings.ToLower(cmd.Flag("format").Value.String())
	if format != "pdf" && format != "docx" {
		logger.Fatal("unsupported output format", zap.String("format", format))
	}

	stem := outputStem(cmd.Flag("output").Value.String())
	artifact := stem + "." + format

	if !flagBool(cmd, "yes") && fileExists(artifact) {
		if !confirmOverwrite(artifact) {
			logger.Info("exiting", zap.String("reason", "overwrite declined"))
			return
		}
	}

	generator, err := newGenerator(ctx, config, logger)
	if err != nil {
		logger.Fatal(
			"building the gemini client",
			zap.Error(err),
			zap.String("hint", "set GEMINI_API_KEY_FILE environment variable or the ai.gemini.api-key-file key in the configuration file"),
		)
	}

	opts := pipeline.Options{
		ResumePath: cmd.Flag("resume").Value.String(),
		JobInput:   cmd.Flag("job-description").Value.String(),
		OutputStem: stem,
		Format:     format,
		Debug:      flagBool(cmd, "save-json") || viper.GetBool("debug"),
		Render:     &render.Config{},
	}

	if config != nil && config.Analysis != nil {
		opts.JobKeywords = config.Analysis.JobKeywords
		opts.ResumeKeywords = config.Analysis.ResumeKeywords
	}
	if config != nil && config.Render != nil {
		opts.Render.SkillOrder = config.Render.SkillOrder
		if config.Render.LaTeX != nil {
			opts.Render.TemplateFile = config.Render.LaTeX.TemplateFile
			opts.Render.UseAI = config.Render.LaTeX.UseAI
		}
	}

	if err := pipeline.New(generator, opts, logger).Run(ctx); err != nil {
		logger.Fatal("optimization failed", zap.Error(err))
	}

	logger.Info("optimized resume saved", zap.String("path", artifact))
}

func newGenerator(ctx context.Context, config *Config, logger *zap.Logger) (*gemini.Client, error) {
	var cfg *GeminiConfig
	if config != nil && config.AI != nil {
		cfg = config.AI.Gemini
	}
	if cfg == nil {
		cfg = &GeminiConfig{}
	}

	keyFile := strings.TrimSpace(cfg.APIKeyFile)
	if keyFile == "" {
		keyFile = strings.TrimSpace(viper.GetString("api-key-file"))
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: keyFile,
	})
	if err != nil {
		return nil, err
	}

	genLogger := logger.With(
		zap.String("provider", "gemini"),
		zap.String("model", cfg.Model),
	)

	return gemini.New(ctx, apiKey, cfg.Model, cfg.MaxRetries, genLogger)
}

// outputStem strips a trailing extension from the output flag, matching the
// artifact naming convention.
func outputStem(output string) string {
	if output == "" {
		return defaultOutputStem
	}
	return strings.TrimSuffix(output, filepath.Ext(output))
}

func confirmOverwrite(artifact string) bool {
	prompt := promptui.Select{
		Label: fmt.Sprintf("%s already exists. Overwrite?", artifact),
		Items: []string{PromptYes, PromptNo},
	}

	_, answer, err := prompt.Run()
	if err != nil {
		return false
	}
	return answer == PromptYes
}

func flagBool(cmd *cobra.Command, name string) bool {
	flag := cmd.Flag(name)
	return flag != nil && strings.EqualFold(flag.Value.String(), "true")
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
