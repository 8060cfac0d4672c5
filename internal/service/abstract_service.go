package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kaiva-ai/kaiva/internal/config"
	"github.com/kaiva-ai/kaiva/internal/domain"
	"github.com/kaiva-ai/kaiva/internal/repository"
	"github.com/tidwall/gjson"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// AbstractService turns an uploaded lease into a downloadable abstract workbook
type AbstractService struct {
	cfg          *config.Config
	extractor    *Extractor
	completer    Completer
	abstractRepo *repository.AbstractRepository
	logger       *zap.Logger
}

// NewAbstractService creates a new abstract service
func NewAbstractService(
	cfg *config.Config,
	extractor *Extractor,
	completer Completer,
	abstractRepo *repository.AbstractRepository,
	logger *zap.Logger,
) *AbstractService {
	return &AbstractService{
		cfg:          cfg,
		extractor:    extractor,
		completer:    completer,
		abstractRepo: abstractRepo,
		logger:       logger,
	}
}

// AbstractSystemPrompt instructs the model to return the lease fields as JSON
func AbstractSystemPrompt() string {
	return "You are a commercial real estate lease analyst. Extract the following fields from the lease document: " +
		strings.Join(domain.LeaseFields, ", ") + ".\n" +
		"Return ONLY a valid JSON object with field names as keys and clearly stated values. Use '" + domain.NotStated + "' if absent.\n" +
		`Format your response like this: {"Field1": "Value1", "Field2": "Value2"}`
}

// Generate extracts lease fields from file and stores the rendered workbook
func (s *AbstractService) Generate(ctx context.Context, file *domain.UploadedFile) (*domain.Abstract, error) {
	if file.SizeBytes > domain.MaxFileBytes {
		return nil, domain.ErrFileTooLarge
	}

	s.logger.Debug("Received lease", zap.String("filename", file.Name), zap.Int64("size", file.SizeBytes))

	text, expected, err := s.extractor.RawText(file)
	if err != nil {
		return nil, err
	}
	if !expected {
		return nil, domain.ErrUnsupportedFileType
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, domain.ErrNoContentExtracted
	}
	s.logger.Debug("Lease text extracted", zap.Int("chars", len([]rune(text))))

	if limit := s.cfg.Abstract.MaxInputChars; limit > 0 {
		if runes := []rune(text); len(runes) > limit {
			text = string(runes[:limit])
		}
	}

	reply, err := s.completer.Complete(ctx, []domain.Message{
		{Role: domain.RoleSystem, Content: AbstractSystemPrompt()},
		{Role: domain.RoleUser, Content: text},
	}, domain.CompletionOptions{
		Model:       s.cfg.Abstract.Model,
		Temperature: s.cfg.Abstract.Temperature,
	})
	if err != nil {
		return nil, err
	}

	fields, err := ParseAbstractFields(reply)
	if err != nil {
		s.logger.Error("Abstract extraction failed", zap.String("filename", file.Name), zap.Error(err))
		return nil, err
	}

	content, err := RenderWorkbook(fields)
	if err != nil {
		return nil, fmt.Errorf("failed to render abstract: %w", err)
	}

	abstract := &domain.Abstract{
		Filename: "abstract_" + strings.ReplaceAll(uuid.New().String(), "-", "") + ".xlsx",
		Source:   file.Name,
		Content:  content,
	}
	if err := s.abstractRepo.Create(ctx, abstract); err != nil {
		return nil, fmt.Errorf("failed to save abstract: %w", err)
	}

	s.logger.Info("Saved abstract",
		zap.String("filename", abstract.Filename),
		zap.String("source", abstract.Source),
	)

	return abstract, nil
}

// Get retrieves a stored abstract by filename
func (s *AbstractService) Get(ctx context.Context, filename string) (*domain.Abstract, error) {
	return s.abstractRepo.Get(ctx, filename)
}

// Prune removes abstracts older than maxAge
func (s *AbstractService) Prune(ctx context.Context, maxAge time.Duration) (int64, error) {
	removed, err := s.abstractRepo.DeleteBefore(ctx, time.Now().Add(-maxAge))
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("Pruned abstracts", zap.Int64("removed", removed))
	}
	return removed, nil
}

// DownloadPath returns the relative URL clients use to fetch an abstract
func DownloadPath(filename string) string {
	return "/download/" + filename
}

// ParseAbstractFields reads the model's reply into LeaseFields order,
// filling any missing field with NotStated.
func ParseAbstractFields(reply string) ([]domain.AbstractField, error) {
	candidate := strings.TrimSpace(reply)
	if !gjson.Valid(candidate) {
		candidate = stripCodeFence(candidate)
	}
	if !gjson.Valid(candidate) {
		candidate = outermostObject(candidate)
	}
	if candidate == "" || !gjson.Valid(candidate) {
		return nil, domain.ErrAbstractUnparseable
	}

	parsed := gjson.Parse(candidate)
	if !parsed.IsObject() {
		return nil, domain.ErrAbstractFormat
	}

	values := make(map[string]string)
	parsed.ForEach(func(key, value gjson.Result) bool {
		if value.Type != gjson.Null {
			values[key.String()] = value.String()
		}
		return true
	})

	fields := make([]domain.AbstractField, 0, len(domain.LeaseFields))
	for _, name := range domain.LeaseFields {
		detail, ok := values[name]
		if !ok || detail == "" {
			detail = domain.NotStated
		}
		fields = append(fields, domain.AbstractField{Field: name, Detail: detail})
	}
	return fields, nil
}

func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	s = strings.TrimSpace(s)
	for _, lang := range []string{"json", "python"} {
		if strings.HasPrefix(s, lang) {
			s = strings.TrimPrefix(s, lang)
			break
		}
	}
	return strings.TrimSpace(s)
}

func outermostObject(s string) string {
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

// RenderWorkbook writes fields into a two-column xlsx workbook
func RenderWorkbook(fields []domain.AbstractField) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows := [][2]string{{"Field", "Extracted Detail"}}
	for _, fld := range fields {
		rows = append(rows, [2]string{fld.Field, fld.Detail})
	}

	for i, row := range rows {
		for j, value := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				return nil, err
			}
			if err := f.SetCellValue(sheet, cell, value); err != nil {
				return nil, err
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
