package service

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/kaiva-ai/kaiva/internal/domain"
	"github.com/kaiva-ai/kaiva/internal/repository"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

func newTestAbstractService(t *testing.T, completer Completer) *AbstractService {
	t.Helper()

	db, err := repository.NewDB(repository.MemoryPath)
	if err != nil {
		t.Fatalf("NewDB() error = %v", err)
	}
	t.Cleanup(func() { db.Close() })

	return NewAbstractService(testConfig("", "sk-test"), NewExtractor(), completer,
		repository.NewAbstractRepository(db), zap.NewNop())
}

func TestParseAbstractFields(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr error
	}{
		{"plain json", `{"Tenant Legal Name": "Acme LLC", "Lease Term": "5 years"}`, nil},
		{"json fence", "```json\n{\"Tenant Legal Name\": \"Acme LLC\", \"Lease Term\": \"5 years\"}\n```", nil},
		{"python fence", "```python\n{\"Tenant Legal Name\": \"Acme LLC\", \"Lease Term\": \"5 years\"}\n```", nil},
		{"surrounding prose", "Here you go:\n{\"Tenant Legal Name\": \"Acme LLC\", \"Lease Term\": \"5 years\"}\nThanks", nil},
		{"null and empty values", `{"Tenant Legal Name": "Acme LLC", "Lease Term": "5 years", "Late Fee": null, "Security Deposit Amount": ""}`, nil},
		{"not json", "I could not find any fields.", domain.ErrAbstractUnparseable},
		{"not an object", `["Acme LLC"]`, domain.ErrAbstractFormat},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fields, err := ParseAbstractFields(tt.reply)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseAbstractFields() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				return
			}

			if len(fields) != len(domain.LeaseFields) {
				t.Fatalf("got %d fields, want %d", len(fields), len(domain.LeaseFields))
			}
			for i, f := range fields {
				if f.Field != domain.LeaseFields[i] {
					t.Errorf("field %d = %q, want %q", i, f.Field, domain.LeaseFields[i])
				}
				switch f.Field {
				case "Tenant Legal Name":
					if f.Detail != "Acme LLC" {
						t.Errorf("Tenant Legal Name = %q", f.Detail)
					}
				case "Lease Term":
					if f.Detail != "5 years" {
						t.Errorf("Lease Term = %q", f.Detail)
					}
				default:
					if f.Detail != domain.NotStated {
						t.Errorf("%s = %q, want %q", f.Field, f.Detail, domain.NotStated)
					}
				}
			}
		})
	}
}

func TestAbstractService_Generate(t *testing.T) {
	completer := &stubCompleter{reply: `{"Tenant Legal Name": "Acme LLC", "Base Rent Schedule": "$5000/mo"}`}
	svc := newTestAbstractService(t, completer)
	ctx := context.Background()

	abstract, err := svc.Generate(ctx, textFile("Tenant: Acme LLC. Rent: $5000/mo."))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if !strings.HasPrefix(abstract.Filename, "abstract_") || !strings.HasSuffix(abstract.Filename, ".xlsx") {
		t.Errorf("Filename = %q", abstract.Filename)
	}
	if got := DownloadPath(abstract.Filename); got != "/download/"+abstract.Filename {
		t.Errorf("DownloadPath() = %q", got)
	}

	if completer.opts.Temperature != 0 || completer.opts.Model != "gpt-4" {
		t.Errorf("options = %+v", completer.opts)
	}
	if completer.messages[0].Role != domain.RoleSystem || !strings.Contains(completer.messages[0].Content, "Late Fee") {
		t.Error("system prompt does not list lease fields")
	}

	stored, err := svc.Get(ctx, abstract.Filename)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}

	f, err := excelize.OpenReader(bytes.NewReader(stored.Content))
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if len(rows) != len(domain.LeaseFields)+1 {
		t.Fatalf("got %d rows, want %d", len(rows), len(domain.LeaseFields)+1)
	}
	if rows[0][0] != "Field" || rows[0][1] != "Extracted Detail" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[3][0] != "Tenant Legal Name" || rows[3][1] != "Acme LLC" {
		t.Errorf("row 3 = %v", rows[3])
	}
}

func TestAbstractService_TruncatesInput(t *testing.T) {
	completer := &stubCompleter{reply: `{}`}
	svc := newTestAbstractService(t, completer)

	if _, err := svc.Generate(context.Background(), textFile(strings.Repeat("x", 20000))); err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got := len(completer.messages[1].Content); got != 12000 {
		t.Errorf("sent %d chars, want 12000", got)
	}
}

func TestAbstractService_Errors(t *testing.T) {
	tests := []struct {
		name      string
		file      *domain.UploadedFile
		completer *stubCompleter
		wantErr   error
	}{
		{
			name:      "unsupported type",
			file:      &domain.UploadedFile{Name: "a.png", MIMEType: "image/png", Bytes: []byte("x")},
			completer: &stubCompleter{},
			wantErr:   domain.ErrUnsupportedFileType,
		},
		{
			name:      "unreadable pdf",
			file:      &domain.UploadedFile{Name: "a.pdf", MIMEType: domain.MIMETypePDF, Bytes: []byte("junk")},
			completer: &stubCompleter{},
			wantErr:   domain.ErrUnreadablePDF,
		},
		{
			name:      "unparseable reply",
			file:      textFile("Tenant: Acme"),
			completer: &stubCompleter{reply: "sorry"},
			wantErr:   domain.ErrAbstractUnparseable,
		},
		{
			name:      "unconfigured",
			file:      textFile("Tenant: Acme"),
			completer: &stubCompleter{err: domain.ErrUnconfigured},
			wantErr:   domain.ErrUnconfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := newTestAbstractService(t, tt.completer)

			_, err := svc.Generate(context.Background(), tt.file)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Generate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestAbstractService_Prune(t *testing.T) {
	svc := newTestAbstractService(t, &stubCompleter{reply: `{}`})
	ctx := context.Background()

	abstract, err := svc.Generate(ctx, textFile("Tenant: Acme"))
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	if removed, err := svc.Prune(ctx, time.Hour); err != nil || removed != 0 {
		t.Errorf("Prune(1h) = %d, %v; want 0, nil", removed, err)
	}
	if removed, err := svc.Prune(ctx, -time.Hour); err != nil || removed != 1 {
		t.Errorf("Prune(-1h) = %d, %v; want 1, nil", removed, err)
	}
	if _, err := svc.Get(ctx, abstract.Filename); !errors.Is(err, domain.ErrNotFound) {
		t.Errorf("Get() after prune error = %v, want ErrNotFound", err)
	}
}
