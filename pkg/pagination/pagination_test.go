package pagination

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/librisapp/libris/pkg/config"
	"github.com/librisapp/libris/pkg/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type widget struct {
	bun.BaseModel `bun:"table:widgets,alias:w"`

	ID        int       `bun:",pk,autoincrement"`
	CreatedAt time.Time `bun:"created_at"`
	Color     string    `bun:"color"`
}

func TestParsePage(t *testing.T) {
	t.Parallel()

	tests := map[string]int{
		"":     1,
		"abc":  1,
		"0":    1,
		"-3":   1,
		"1":    1,
		"4":    4,
		" 2 ":  2,
		"2.5":  1,
		"2abc": 1,
	}
	for raw, expected := range tests {
		assert.Equal(t, expected, ParsePage(raw), "raw=%q", raw)
	}
}

func TestOffset(t *testing.T) {
	t.Parallel()
	assert.Equal(t, 0, Offset(1))
	assert.Equal(t, 0, Offset(0))
	assert.Equal(t, 4, Offset(3))
}

func TestSplitList(t *testing.T) {
	t.Parallel()
	assert.Nil(t, SplitList(""))
	assert.Nil(t, SplitList("   "))
	assert.Equal(t, []string{"fiction", "drama"}, SplitList("fiction, drama,,"))
}

func TestEscapeLike(t *testing.T) {
	t.Parallel()
	assert.Equal(t, `100\% \_real\\`, EscapeLike(`100% _real\`))
}

func TestList(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	db, err := database.New(config.NewForTest())
	require.NoError(t, err)
	defer db.Close()

	_, err = db.NewCreateTable().Model((*widget)(nil)).Exec(ctx)
	require.NoError(t, err)

	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		color := "red"
		if i%2 == 1 {
			color = "blue"
		}
		w := &widget{CreatedAt: base.Add(time.Duration(i) * time.Hour), Color: color}
		_, err := db.NewInsert().Model(w).Exec(ctx)
		require.NoError(t, err)
	}

	red := func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("w.color = ?", "red")
	}

	for page := 1; page <= 3; page++ {
		t.Run(fmt.Sprintf("page %d", page), func(t *testing.T) {
			result, err := List[*widget](ctx, db, page, "w.created_at", red)
			require.NoError(t, err)
			assert.Equal(t, 3, result.Metadata.Total)
			assert.Equal(t, page, result.Metadata.Page)
			assert.LessOrEqual(t, len(result.Data), PageSize)
		})
	}

	result, err := List[*widget](ctx, db, 1, "w.created_at", red)
	require.NoError(t, err)
	require.Len(t, result.Data, 2)
	assert.True(t, result.Data[0].CreatedAt.After(result.Data[1].CreatedAt))

	result, err = List[*widget](ctx, db, 9, "w.created_at", red)
	require.NoError(t, err)
	assert.Equal(t, 3, result.Metadata.Total)
	assert.NotNil(t, result.Data)
	assert.Empty(t, result.Data)
}
