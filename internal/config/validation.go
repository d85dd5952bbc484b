package config

import (
	"fmt"
	"path/filepath"
	"strings"

	derrors "git.home.luguber.info/inful/pagebuilder/internal/errors"
)

// Validate checks a configuration after defaults have been applied.
func Validate(cfg *Config) error {
	if strings.ContainsAny(cfg.TemplateExt, `/\`) {
		return derrors.ConfigInvalid("template_ext", "must not contain path separators")
	}

	build, err := filepath.Abs(cfg.Folders.Build)
	if err != nil {
		return derrors.ConfigInvalid("folders.build", err.Error())
	}
	src, err := filepath.Abs(cfg.Folders.Src)
	if err != nil {
		return derrors.ConfigInvalid("folders.src", err.Error())
	}
	if build == src || strings.HasPrefix(src, build+string(filepath.Separator)) {
		return derrors.ConfigInvalid("folders.build", "build folder must not contain the source folder")
	}

	for i, p := range cfg.Pages {
		if strings.TrimSpace(p.View) == "" {
			return derrors.ValidationFailed(fmt.Sprintf("pages[%d].view", i), "view is required")
		}
	}
	return nil
}
