package main

import (
	"bytes"
	"testing"

	"ai-pack-planner/internal/metrics"
	"ai-pack-planner/internal/trip"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadParamsFromFlags(t *testing.T) {
	cmd := newGenerateCmd(nil, func() bool { return false })
	values := map[string]*string{}
	set := func(flag, key, v string) {
		require.NoError(t, cmd.Flags().Set(flag, v))
		values[key] = &v
	}
	set("age", "age", "30")
	set("weight", "weight", "180")
	set("days", "days", "4")
	set("tent-capacity", "tentCapacity", "2")
	set("season", "season", "fall")

	p, err := readParams(cmd, values, false)
	require.NoError(t, err)
	assert.Equal(t, 30.0, p.Age)
	assert.Equal(t, 180.0, p.BodyWeight)
	assert.Equal(t, 4, p.Days)
	assert.Equal(t, 2, p.TentCapacity)
	assert.Equal(t, trip.SeasonFall, p.Season)
	assert.Equal(t, trip.DietFlexible, p.Diet)
}

func TestReadParamsRejectsBadFlag(t *testing.T) {
	cmd := newGenerateCmd(nil, func() bool { return false })
	require.NoError(t, cmd.Flags().Set("diet", "carnivore"))
	v := "carnivore"

	_, err := readParams(cmd, map[string]*string{"diet": &v}, false)
	var fe trip.FieldErrors
	require.ErrorAs(t, err, &fe)
	assert.Contains(t, fe, "diet")
}

func TestPrintMetrics(t *testing.T) {
	var buf bytes.Buffer
	printMetrics(&buf,
		[]metrics.DailyUsage{{Date: "2026-10-19", TotalPrompt: 10, TotalCompletion: 5, TotalExecution: 2}},
		[]metrics.StageUsage{{Stage: "clothing", Calls: 2, Tokens: 15, AvgLatencyMS: 900}},
		metrics.SysHealth{DataSize: "4.0 KB"},
	)
	out := buf.String()
	assert.Contains(t, out, "2026-10-19")
	assert.Contains(t, out, "clothing")
	assert.Contains(t, out, "avg 900ms")
	assert.Contains(t, out, "data 4.0 KB")
}
