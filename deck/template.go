package deck

import (
	"github.com/richinex/slidesmith/internal/logger"
	"github.com/richinex/slidesmith/pptx"
)

// LoadTemplate opens the branded template at path. When the file is
// missing or unreadable it returns the built-in blank template and
// fromFile is false.
func LoadTemplate(path string, log *logger.Logger) (pres *pptx.Presentation, fromFile bool) {
	if log == nil {
		log = logger.Nop()
	}
	if path != "" {
		p, err := pptx.Open(path)
		if err == nil {
			return p, true
		}
		log.Warn("template not usable, using blank", "path", path, "error", err)
	}
	return pptx.NewDefault(), false
}
