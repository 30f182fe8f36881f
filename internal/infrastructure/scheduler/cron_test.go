package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCronExpression(t *testing.T) {
	tests := []struct {
		name    string
		expr    string
		wantErr bool
	}{
		{name: "every minute", expr: EveryMinute},
		{name: "every day at 7am", expr: EveryDay7AM},
		{name: "step values", expr: "*/15 * * * *"},
		{name: "range", expr: "0 9-17 * * *"},
		{name: "list", expr: "0 7,19 * * *"},
		{name: "too few fields", expr: "* * * *", wantErr: true},
		{name: "minute out of range", expr: "61 * * * *", wantErr: true},
		{name: "garbage field", expr: "x * * * *", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce, err := ParseCronExpression(tt.expr)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expr, ce.String())
		})
	}
}

func TestCronNext(t *testing.T) {
	// Wednesday 2026-01-07 06:30 local.
	base := time.Date(2026, 1, 7, 6, 30, 0, 0, time.UTC)

	tests := []struct {
		name string
		expr string
		want time.Time
	}{
		{
			name: "same day digest time",
			expr: "0 7 * * *",
			want: time.Date(2026, 1, 7, 7, 0, 0, 0, time.UTC),
		},
		{
			name: "rolls to next day when time passed",
			expr: "0 6 * * *",
			want: time.Date(2026, 1, 8, 6, 0, 0, 0, time.UTC),
		},
		{
			name: "next quarter hour",
			expr: "*/15 * * * *",
			want: time.Date(2026, 1, 7, 6, 45, 0, 0, time.UTC),
		},
		{
			name: "waits for Sunday",
			expr: "0 0 * * 0",
			want: time.Date(2026, 1, 11, 0, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ce := MustParseCronExpression(tt.expr)
			assert.Equal(t, tt.want, ce.Next(base))
		})
	}
}

func TestCronNextNeverReturnsPast(t *testing.T) {
	ce := MustParseCronExpression(EveryMinute)
	now := time.Now()
	next := ce.Next(now)
	assert.True(t, next.After(now))
}
