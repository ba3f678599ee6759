package conversation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseVisitTime(t *testing.T) {
	loc, err := time.LoadLocation("America/Montevideo")
	require.NoError(t, err)
	now := time.Date(2026, 2, 1, 10, 0, 0, 0, loc)

	tests := []struct {
		name    string
		input   string
		want    time.Time
		wantErr error
	}{
		{name: "canonical", input: "05/02/2026 15:00", want: time.Date(2026, 2, 5, 15, 0, 0, 0, loc)},
		{name: "single digits", input: "5/2/2026 9:30", want: time.Date(2026, 2, 5, 9, 30, 0, 0, loc)},
		{name: "dash separator", input: "05-02-2026 15:00", want: time.Date(2026, 2, 5, 15, 0, 0, 0, loc)},
		{name: "dot separator and spaces", input: "  05.02.2026   15.00 ", want: time.Date(2026, 2, 5, 15, 0, 0, 0, loc)},
		{name: "later today", input: "01/02/2026 18:00", want: time.Date(2026, 2, 1, 18, 0, 0, 0, loc)},
		{name: "free text", input: "mañana a las 3", wantErr: ErrVisitTimeFormat},
		{name: "missing time", input: "05/02/2026", wantErr: ErrVisitTimeFormat},
		{name: "two digit year", input: "05/02/26 15:00", wantErr: ErrVisitTimeFormat},
		{name: "february 30", input: "30/02/2026 10:00", wantErr: ErrVisitTimeInvalid},
		{name: "month 13", input: "01/13/2026 10:00", wantErr: ErrVisitTimeInvalid},
		{name: "hour 24", input: "05/02/2026 24:00", wantErr: ErrVisitTimeInvalid},
		{name: "past", input: "31/01/2026 15:00", wantErr: ErrVisitTimePast},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVisitTime(tt.input, now, loc)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.True(t, tt.want.Equal(got), "got %s", got)
			assert.Equal(t, loc, got.Location())
		})
	}
}
