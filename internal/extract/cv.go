package extract

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/hiredeck/applicant-radar/internal/message"
	"github.com/hiredeck/applicant-radar/internal/textract"
)

// CV saves message attachments to the cache dir and extracts their text,
// stopping at the first attachment that yields any. Unreadable attachments
// are logged and skipped, never fatal. Both return values are empty when the
// message carries no readable CV.
func CV(m *message.Message, cacheDir string, ex textract.Extractor, logger *zap.Logger) (text, path string) {
	if len(m.Attachments) == 0 {
		return "", ""
	}

	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		logger.Warn("creating cv cache dir", zap.String("dir", cacheDir), zap.Error(err))
		return "", ""
	}

	for _, a := range m.Attachments {
		dst := filepath.Join(cacheDir, filepath.Base(a.Filename))
		if err := os.WriteFile(dst, a.Data, 0o644); err != nil {
			logger.Warn("saving attachment",
				zap.String("filename", a.Filename),
				zap.Error(err),
			)
			continue
		}

		extracted, err := parseByExt(dst, a.Ext, ex)
		if err != nil {
			logger.Warn("parsing attachment",
				zap.String("filename", a.Filename),
				zap.Error(err),
			)
			continue
		}

		if extracted != "" {
			logger.Info("extracted cv",
				zap.String("filename", a.Filename),
				zap.Int("chars", len(extracted)),
			)
			return extracted, dst
		}
	}

	return "", ""
}

func parseByExt(path, ext string, ex textract.Extractor) (string, error) {
	switch ext {
	case ".pdf":
		return ex.ExtractText(path, textract.KindPDF)
	case ".doc", ".docx":
		return ex.ExtractText(path, textract.KindDocx)
	case ".txt":
		data, err := os.ReadFile(path)
		if err != nil {
			return "", err
		}
		return message.CleanText(data), nil
	default:
		return "", nil
	}
}
