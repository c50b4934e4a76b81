package main

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Chaisiri-65311187/Student-Compatency-System-sub000/internal/models"
)

func TestTableRowsHighlightsLowTotals(t *testing.T) {
	overview := &models.CohortOverview{Rows: []models.OverviewRow{
		{StudentCode: "S001", FullName: "Ann", Scores: models.SubScores{Academic: 80, Total: 78.5}},
		{StudentCode: "S002", FullName: "Bob", Scores: models.SubScores{Academic: 30, Total: 41.2}, BelowTarget: true},
	}}
	alert := func(a ...interface{}) string { return "<red>" + fmt.Sprint(a...) + "</red>" }

	rows := tableRows(overview, alert)
	require.Len(t, rows, 2)
	assert.Equal(t, "78.50", rows[0][7])
	assert.Equal(t, "", rows[0][8])
	assert.Equal(t, "<red>41.20</red>", rows[1][7])
	assert.Equal(t, "yes", rows[1][8])
	assert.Equal(t, "30.00", rows[1][2])
}
