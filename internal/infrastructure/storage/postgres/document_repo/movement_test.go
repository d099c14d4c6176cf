package document_repo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stockledger/internal/domain/movement"
)

const selectHeader = "SELECT id, version, created_at, updated_at, created_by, type, posted_at, status, confirmed_at, cancelled_at FROM stock_movements"

func TestFilteredQuery(t *testing.T) {
	r := NewMovementRepo(nil)
	consume := movement.TypeConsume
	draft := movement.StatusDraft

	tests := []struct {
		name     string
		filter   movement.ListFilter
		wantSQL  string
		wantArgs []any
	}{
		{
			name:    "none",
			wantSQL: selectHeader,
		},
		{
			name:     "type and status",
			filter:   movement.ListFilter{Type: &consume, Status: &draft},
			wantSQL:  selectHeader + " WHERE type = $1 AND status = $2",
			wantArgs: []any{"Consume", "Draft"},
		},
		{
			name:     "item",
			filter:   movement.ListFilter{Item: "ITEM-1"},
			wantSQL:  selectHeader + " WHERE EXISTS (SELECT 1 FROM stock_movement_lines l WHERE l.movement_id = stock_movements.id AND l.item = $1)",
			wantArgs: []any{"ITEM-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := r.filtered(r.builder.Select(headerColumns...).From("stock_movements"), tt.filter)
			sql, args, err := q.ToSql()
			require.NoError(t, err)
			assert.Equal(t, tt.wantSQL, sql)
			if tt.wantArgs == nil {
				assert.Empty(t, args)
				return
			}
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestUpdateQuery_GuardsVersion(t *testing.T) {
	r := NewMovementRepo(nil)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	m := movement.New(movement.TypeReceive, now, now)
	m.Touch(now.Add(time.Minute))

	sql, args, err := r.updateQuery(m, 1).ToSql()
	require.NoError(t, err)

	assert.Equal(t,
		"UPDATE stock_movements SET cancelled_at = $1, confirmed_at = $2, posted_at = $3, status = $4, type = $5, updated_at = $6, version = $7 "+
			"WHERE id = $8 AND version = $9",
		sql)
	require.Len(t, args, 9)
	assert.Equal(t, 2, args[6])
	assert.Equal(t, m.ID.String(), args[7])
	assert.Equal(t, 1, args[8])
}

func TestInsertQueryAndLines(t *testing.T) {
	r := NewMovementRepo(nil)
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	m := movement.New(movement.TypeTransfer, now, now)
	m.AddLine("ITEM-1", decimal.NewFromInt(2), decimal.NewFromInt(500), "Main", "Store")

	sql, args, err := r.insertQuery(m).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"INSERT INTO stock_movements (id,version,created_at,updated_at,created_by,number,type,posted_at,status,confirmed_at,cancelled_at) "+
			"VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)",
		sql)
	assert.Len(t, args, 11)

	assert.Equal(t, []string{
		"movement_id", "line_no", "item", "qty", "rate", "source_warehouse", "target_warehouse",
	}, lineColumns)

	lsql, largs, err := r.linesQuery([]string{m.ID.String()}).ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT movement_id, line_no, item, qty, rate, source_warehouse, target_warehouse FROM stock_movement_lines "+
			"WHERE movement_id IN ($1) ORDER BY movement_id, line_no",
		lsql)
	assert.Equal(t, []any{m.ID.String()}, largs)
}
