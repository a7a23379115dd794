package cmd

import (
	"bytes"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shuttle/internal/modules/pricing"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestQuote_JSON(t *testing.T) {
	out, err := run(t, "quote", "--tz", "UTC",
		"--base", "60000", "--destination", "Pucón",
		"--date", "2025-06-07", "--time", "08:00",
		"--now", "2025-06-04T06:30", "--format", "json")
	require.NoError(t, err)

	var v pricing.QuoteView
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, int64(81000), v.FinalPrice)
	assert.Equal(t, 3, v.LeadDays)
	require.Len(t, v.AppliedAdjustments, 3)
	assert.Equal(t, "Pucón", v.AppliedAdjustments[0].DestinationLabel)
}

func TestQuote_Table(t *testing.T) {
	out, err := run(t, "quote", "--tz", "UTC",
		"--base", "100000", "--date", "2025-07-09T10:00", "--now", "2025-06-04")
	require.NoError(t, err)
	assert.Contains(t, out, "Reserva anticipada máxima")
	assert.Contains(t, out, "-15%")
	assert.Contains(t, out, "$85.000")
}

func TestQuote_Errors(t *testing.T) {
	_, err := run(t, "quote", "--tz", "UTC", "--base", "1000", "--date", "pronto", "--now", "2025-06-04")
	assert.ErrorIs(t, err, pricing.ErrInvalidSchedule)

	_, err = run(t, "quote", "--tz", "UTC", "--base", "1000", "--date", "2025-06-10", "--now", "ayer")
	assert.Error(t, err)

	_, err = run(t, "quote", "--tz", "UTC", "--base", "1000", "--date", "2025-06-10", "--format", "xml")
	assert.Error(t, err)

	_, err = run(t, "quote", "--tz", "UTC", "--date", "2025-06-10")
	assert.Error(t, err)
}

func TestRules(t *testing.T) {
	out, err := run(t, "rules")
	require.NoError(t, err)
	assert.Contains(t, out, "Reserva para el mismo día")
	assert.Contains(t, out, "+25%")
	assert.Contains(t, out, "viernes, sábado, domingo")
	assert.Contains(t, out, "antes de las 09:00")
}

func TestCLP(t *testing.T) {
	assert.Equal(t, "$0", clp(0))
	assert.Equal(t, "$950", clp(950))
	assert.Equal(t, "$81.000", clp(81000))
	assert.Equal(t, "$1.234.567", clp(1234567))
	assert.Equal(t, "-$15.000", clp(-15000))
	assert.Equal(t, "$9.223.372.036.854.775.807", clp(math.MaxInt64))
	assert.Equal(t, "-$9.223.372.036.854.775.808", clp(math.MinInt64))
}
