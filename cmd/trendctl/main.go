package main

import (
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/pixelflowlabs/trendreel/internal/dashboard"
	"github.com/pixelflowlabs/trendreel/internal/models"
	"github.com/pixelflowlabs/trendreel/internal/studio"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	apiURL  string
	verbose bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "trendctl",
		Short: "Terminal client for the TrendReel API",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
			logrus.SetLevel(logrus.ErrorLevel)
			if verbose {
				logrus.SetLevel(logrus.DebugLevel)
			}
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("TRENDREEL_API_URL", "http://localhost:5000"), "TrendReel API base URL")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	rootCmd.AddCommand(dashboardCmd(), videoCmd(), templatesCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func dashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "Live trend dashboard, refreshed every 35 minutes",
		RunE: func(cmd *cobra.Command, args []string) error {
			model := dashboard.NewModel(dashboard.NewClient(apiURL))
			_, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
			return err
		},
	}
}

func videoCmd() *cobra.Command {
	var (
		req       models.VideoRequest
		template  string
		outputDir string
	)

	cmd := &cobra.Command{
		Use:   "video",
		Short: "Generate a product video from the latest trends",
		Example: `  trendctl video --template "Product Showcase"
  trendctl video --product "EcoFresh" --description "Insulated bottle" --scenes "Scene 1: ..."`,
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Scenes = strings.ReplaceAll(req.Scenes, `\n`, "\n")
			if template != "" {
				tpl, ok := studio.FindTemplate(template)
				if !ok {
					return fmt.Errorf("unknown template %q", template)
				}
				overlay(&req, tpl.Request)
			}

			client := studio.NewClient(apiURL, outputDir)
			result, err := studio.RunProgress(cmd.Context(), client, &req)
			if err != nil {
				return err
			}
			if result.Prompt != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Prompt: %s\n", result.Prompt)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&req.ProductName, "product", "", "product name")
	cmd.Flags().StringVar(&req.Description, "description", "", "product description")
	cmd.Flags().StringVar(&req.Scenes, "scenes", "", `scene list, one scene per line (a literal \n also separates scenes)`)
	cmd.Flags().StringVar(&template, "template", "", "start from a sample template (see: trendctl templates)")
	cmd.Flags().StringVarP(&outputDir, "output", "o", ".", "directory for downloaded videos")

	return cmd
}

// overlay fills the empty fields of req from the template request
func overlay(req *models.VideoRequest, from models.VideoRequest) {
	if strings.TrimSpace(req.ProductName) == "" {
		req.ProductName = from.ProductName
	}
	if strings.TrimSpace(req.Description) == "" {
		req.Description = from.Description
	}
	if strings.TrimSpace(req.Scenes) == "" {
		req.Scenes = from.Scenes
	}
}

func templatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "templates",
		Short: "List the sample video templates",
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			for _, tpl := range studio.Templates() {
				fmt.Fprintf(out, "%s - %s\n  product: %s\n", tpl.Title, tpl.Description, tpl.Request.ProductName)
			}
		},
	}
}
