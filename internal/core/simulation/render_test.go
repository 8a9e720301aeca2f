package simulation

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender_EmptyIsHeaderOnly(t *testing.T) {
	out, err := Render(nil)
	require.NoError(t, err)
	assert.Equal(t, "timestamp,source,target,value\n", string(out))
}

func TestRender_Rows(t *testing.T) {
	g := NewGenerator(WithClock(FixedClock(epoch)), WithRandom(sequence(42, 7)))
	nodes, edges := intakeToWarehouse()

	records, err := g.Generate(nodes, edges, Settings{TotalDuration: 1, Interval: 30})
	require.NoError(t, err)

	out, err := Render(records)
	require.NoError(t, err)

	want := "timestamp,source,target,value\n" +
		"2024-03-01 09:30:00,Intake,Warehouse,42\n" +
		"2024-03-01 09:30:30,Intake,Warehouse,7\n"
	assert.Equal(t, want, string(out))
	assert.Equal(t, 2, RowCount(records))
}

func TestRender_TicksWithoutLinksContributeNoRows(t *testing.T) {
	records := []TickRecord{
		{Timestamp: epoch, Tick: 1, Nodes: []Node{{Name: "Lonely"}}},
		{Timestamp: epoch.Add(time.Minute), Tick: 2, Nodes: []Node{{Name: "Lonely"}}},
	}

	out, err := Render(records)
	require.NoError(t, err)
	assert.Equal(t, "timestamp,source,target,value\n", string(out))
	assert.Zero(t, RowCount(records))
}

func TestRender_QuotesSpecialCharacters(t *testing.T) {
	records := []TickRecord{{
		Timestamp: epoch,
		Tick:      1,
		Links: []Link{
			{Source: "Intake, east", Target: `The "big" one`, Value: 5},
		},
	}}

	out, err := Render(records)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSuffix(string(out), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `2024-03-01 09:30:00,"Intake, east","The ""big"" one",5`, lines[1])
}

func TestRender_Idempotent(t *testing.T) {
	g := NewGenerator(WithClock(FixedClock(epoch)))
	nodes, edges := intakeToWarehouse()
	records, err := g.Generate(nodes, edges, DefaultSettings())
	require.NoError(t, err)

	first, err := Render(records)
	require.NoError(t, err)
	second, err := Render(records)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestRender_TimestampUsesRecordLocation(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	records := []TickRecord{{
		Timestamp: epoch.In(loc),
		Tick:      1,
		Links:     []Link{{Source: "a", Target: "b", Value: 1}},
	}}

	out, err := Render(records)
	require.NoError(t, err)
	assert.Contains(t, string(out), "2024-03-01 11:30:00,a,b,1")
}

func TestFilename(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Untitled Diagram", "untitled-diagram-historical-data.csv"},
		{"  Orders -> Warehouse (v2)!! ", "orders-warehouse-v2-historical-data.csv"},
		{"ETL", "etl-historical-data.csv"},
		{"---", "diagram-historical-data.csv"},
		{"", "diagram-historical-data.csv"},
	}

	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, Filename(tt.title))
		})
	}
}
