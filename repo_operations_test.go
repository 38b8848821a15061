package calc_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	calc "github.com/goliatone/go-calc"
)

func TestOperationsRecordAndLatest(t *testing.T) {
	db := newTestDB(t)
	users := calc.NewUsersRepository(db)
	ops := calc.NewOperationsRepository(db)
	ctx := context.Background()

	user, err := users.Register(ctx, &calc.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	base := time.Now().UTC().Truncate(time.Second)

	entries := []*calc.Operation{
		{Name: "add", Num1: 2, Num2: 3, Result: 5, UserID: user.ID, Timestamp: base},
		{Name: "subtract", Num1: 5, Num2: 3, Result: 2, UserID: user.ID, Timestamp: base.Add(time.Second)},
		{Name: "multiply", Num1: 2, Num2: 3, Result: 6, UserID: user.ID, Timestamp: base.Add(2 * time.Second)},
	}

	for _, op := range entries {
		_, err := ops.Record(ctx, op)
		require.NoError(t, err)
	}

	latest, err := ops.Latest(ctx, 10)
	require.NoError(t, err)
	require.Len(t, latest, 3)

	// Newest first.
	assert.Equal(t, "multiply", latest[0].Name)
	assert.Equal(t, "subtract", latest[1].Name)
	assert.Equal(t, "add", latest[2].Name)
	assert.Equal(t, float64(6), latest[0].Result)
}

func TestOperationsLatestLimit(t *testing.T) {
	db := newTestDB(t)
	users := calc.NewUsersRepository(db)
	ops := calc.NewOperationsRepository(db)
	ctx := context.Background()

	user, err := users.Register(ctx, &calc.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	base := time.Now().UTC().Truncate(time.Second)
	for i := 0; i < 15; i++ {
		_, err := ops.Record(ctx, &calc.Operation{
			Name:      "add",
			Num1:      float64(i),
			Num2:      1,
			Result:    float64(i + 1),
			UserID:    user.ID,
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		require.NoError(t, err)
	}

	latest, err := ops.Latest(ctx, calc.DefaultHistoryLimit)
	require.NoError(t, err)
	assert.Len(t, latest, calc.DefaultHistoryLimit)
	assert.Equal(t, float64(14), latest[0].Num1)
}

func TestOperationsLatestEmpty(t *testing.T) {
	db := newTestDB(t)
	ops := calc.NewOperationsRepository(db)

	latest, err := ops.Latest(context.Background(), 10)
	require.NoError(t, err)
	assert.NotNil(t, latest)
	assert.Empty(t, latest)
}

func TestOperationsRecordSetsTimestamp(t *testing.T) {
	db := newTestDB(t)
	users := calc.NewUsersRepository(db)
	ops := calc.NewOperationsRepository(db)
	ctx := context.Background()

	user, err := users.Register(ctx, &calc.User{Username: "alice", Email: "a@x.com", PasswordHash: "h"})
	require.NoError(t, err)

	op, err := ops.Record(ctx, &calc.Operation{Name: "add", Num1: 1, Num2: 1, Result: 2, UserID: user.ID})
	require.NoError(t, err)
	assert.False(t, op.Timestamp.IsZero())
}
