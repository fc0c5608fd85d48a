package pdf

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/intrafact/internal/core/domain"
)

func TestSupportedTypes(t *testing.T) {
	assert.Equal(t, []string{"pdf"}, New().SupportedTypes())
}

func TestExtract_InvalidPDF(t *testing.T) {
	_, err := New().Extract(context.Background(), []byte("%PDF-1.4\nthis is not a real pdf"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}

func TestExtract_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Extract(ctx, []byte("%PDF-1.4"))

	assert.ErrorIs(t, err, context.Canceled)
}

func TestTextFromStream(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   string
	}{
		{
			name:   "single Tj",
			stream: "BT\n/F1 12 Tf\n72 712 Td\n(Hello World) Tj\nET",
			want:   "Hello World",
		},
		{
			name:   "TJ array",
			stream: "BT\n[(Kern) -120 (ed text)] TJ\nET",
			want:   "Kerned text",
		},
		{
			name:   "next line operators",
			stream: "BT\n(First) Tj\nT*\n(Second) Tj\n(Third) '\nET",
			want:   "First Second Third",
		},
		{
			name:   "positioning adds space",
			stream: "BT\n(Left) Tj\n100 0 Td\n(Right) Tj\nET",
			want:   "Left Right",
		},
		{
			name:   "escaped parentheses",
			stream: `BT` + "\n" + `(f\(x\) = 1) Tj` + "\nET",
			want:   "f(x) = 1",
		},
		{
			name:   "no text operators",
			stream: "q\n1 0 0 1 0 0 cm\nQ",
			want:   "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, textFromStream([]byte(tt.stream)))
		})
	}
}

func TestDecodeString(t *testing.T) {
	tests := []struct {
		raw  string
		want string
	}{
		{`plain`, "plain"},
		{`a\nb`, "a\nb"},
		{`tab\there`, "tab\there"},
		{`back\\slash`, `back\slash`},
		{`\101\102C`, "ABC"},
		{`space\040here`, "space here"},
		{`trailing\`, `trailing\`},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, decodeString([]byte(tt.raw)))
		})
	}
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", cleanText("  a \n\n b\t\tc  "))
	assert.Equal(t, "ab", cleanText("a\x00b"))
}
