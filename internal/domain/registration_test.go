package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecord_Emails(t *testing.T) {
	tests := []struct {
		name       string
		rec        Record
		want       []string
		wantReason string
	}{
		{
			name: "single normalizes",
			rec:  Record{"type": "single", "email": "  Ann@X.com "},
			want: []string{"ann@x.com"},
		},
		{
			name: "multiple primary then additional",
			rec: Record{
				"type":    "multiple",
				"primary": map[string]any{"email": "P@x.com"},
				"additional": []any{
					map[string]any{"email": "a1@x.com"},
					map[string]any{"email": "A2@x.com"},
				},
			},
			want: []string{"p@x.com", "a1@x.com", "a2@x.com"},
		},
		{
			name: "multiple without additional",
			rec:  Record{"type": "multiple", "primary": map[string]any{"email": "p@x.com"}},
			want: []string{"p@x.com"},
		},
		{
			name:       "missing type",
			rec:        Record{"email": "a@x.com"},
			wantReason: ReasonMissingType,
		},
		{
			name:       "unknown type",
			rec:        Record{"type": "group", "email": "a@x.com"},
			wantReason: ReasonMissingType,
		},
		{
			name:       "single without email",
			rec:        Record{"type": "single", "name": "Ann"},
			wantReason: ReasonMissingEmail,
		},
		{
			name:       "multiple without primary email",
			rec:        Record{"type": "multiple", "primary": map[string]any{"name": "P"}},
			wantReason: ReasonMissingEmail,
		},
		{
			name: "additional entry without email",
			rec: Record{
				"type":       "multiple",
				"primary":    map[string]any{"email": "p@x.com"},
				"additional": []any{map[string]any{"name": "nobody"}},
			},
			wantReason: ReasonMissingEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.rec.Emails()
			if tt.wantReason != "" {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrValidation))
				var ve *ValidationError
				require.ErrorAs(t, err, &ve)
				assert.Equal(t, tt.wantReason, ve.Reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRecord_SetPaymentStatus(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		rec := Record{"type": "single", "email": "Ann@x.com"}
		require.True(t, rec.SetPaymentStatus("ann@X.com ", "paid"))
		assert.Equal(t, "paid", rec["payment_status"])
	})

	t.Run("additional leaf only", func(t *testing.T) {
		first := map[string]any{"email": "a1@x.com"}
		second := map[string]any{"email": "a2@x.com"}
		primary := map[string]any{"email": "p@x.com"}
		rec := Record{"type": "multiple", "primary": primary, "additional": []any{first, second}}

		require.True(t, rec.SetPaymentStatus("a2@x.com", "paid"))
		assert.Equal(t, "paid", second["payment_status"])
		assert.NotContains(t, first, "payment_status")
		assert.NotContains(t, primary, "payment_status")
		assert.NotContains(t, rec, "payment_status")
	})

	t.Run("record without type never matches", func(t *testing.T) {
		rec := Record{"email": "a@x.com"}
		assert.False(t, rec.SetPaymentStatus("a@x.com", "paid"))
		assert.NotContains(t, rec, "payment_status")
	})

	t.Run("empty email never matches", func(t *testing.T) {
		rec := Record{"type": "single"}
		assert.False(t, rec.SetPaymentStatus("  ", "paid"))
	})
}

func TestRegistrant_Flatten(t *testing.T) {
	rec := Record{"type": "single", "email": "a@x.com", "name": "Ann"}
	regs := rec.Registrants()
	require.Len(t, regs, 1)

	flat := regs[0].Flatten("2025-01-02 03:04:05")
	assert.Equal(t, "a@x.com", flat["email"])
	assert.Equal(t, "2025-01-02 03:04:05", flat["created_at"])
	assert.Equal(t, RoleSingle, flat["role"])
	assert.NotContains(t, flat, "type")
}

func TestErrorsMatchSentinels(t *testing.T) {
	assert.ErrorIs(t, &ConflictError{Emails: []string{"a@x.com"}}, ErrConflict)
	assert.ErrorIs(t, &UploadError{Reason: UploadMissing}, ErrUpload)
	assert.ErrorIs(t, NewStorageError("write", errors.New("disk full")), ErrStorage)
	assert.ErrorIs(t, NewMailError("auth", errors.New("535")), ErrMail)

	loc, ok := ErrorLocation(NewStorageError("write", errors.New("disk full")))
	require.True(t, ok)
	assert.Equal(t, "registration_test.go", loc.File)
	assert.Positive(t, loc.Line)

	assert.Equal(t, "The following email(s) are already registered: a@x.com, b@x.com",
		(&ConflictError{Emails: []string{"a@x.com", "b@x.com"}}).Error())
}
