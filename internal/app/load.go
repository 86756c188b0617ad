package app

import (
	"fmt"
	"path/filepath"

	"github.com/vk/conveyorgo/internal/config"
	"github.com/vk/conveyorgo/internal/hclcfg"
	"github.com/vk/conveyorgo/internal/yamlcfg"
)

// LoaderForPath selects the dialect loader from the file extension.
func LoaderForPath(path string) (config.Loader, error) {
	switch filepath.Ext(path) {
	case ".hcl":
		return hclcfg.NewLoader(), nil
	case ".yml", ".yaml":
		return yamlcfg.NewLoader(), nil
	default:
		return nil, fmt.Errorf("unsupported declaration format %q (want .hcl, .yml or .yaml)", filepath.Ext(path))
	}
}
