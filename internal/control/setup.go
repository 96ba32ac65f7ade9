package control

import (
	"fmt"
	"os"
	"path/filepath"

	"earshot/internal/config"

	"github.com/spf13/cobra"
)

// NewSetupCmd downloads the default model if missing.
func NewSetupCmd(cfgPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Download default whisper model if missing",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*cfgPath)
			if err != nil {
				return err
			}
			modelPath := os.ExpandEnv(cfg.ASR.ModelPath)
			if _, err := os.Stat(modelPath); err == nil {
				fmt.Println("model already present at", modelPath)
				return nil
			}
			name := filepath.Base(modelPath)
			url, ok := modelRegistry[name]
			if !ok {
				return fmt.Errorf("configured model %q is not in the registry; run models list", name)
			}
			if err := os.MkdirAll(filepath.Dir(modelPath), 0o755); err != nil {
				return err
			}
			fmt.Printf("downloading model to %s\n", modelPath)
			if err := downloadFile(url, modelPath); err != nil {
				return err
			}
			fmt.Println("model download complete")
			return nil
		},
	}
}
