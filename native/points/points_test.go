package points_test

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/require"

	"namechain/native/points"
	"namechain/native/stats"
)

func addr(b byte) common.Address {
	return common.BytesToAddress([]byte{b})
}

func wei(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok, "bad amount %q", s)
	return v
}

func TestPointsLifecycle(t *testing.T) {
	owner := addr(1)
	user1 := addr(2)
	user2 := addr(3)

	statsLedger := stats.New(owner)
	require.NoError(t, statsLedger.SetWriter(owner, owner))

	engine := points.New(owner, statsLedger, nil, big.NewInt(100))

	require.Equal(t, int64(0), engine.Points(user1).Int64())
	require.Equal(t, int64(0), engine.Points(user2).Int64())

	// 0.1337 in wei, recorded as spend, scales to 13.37 points.
	spent := wei(t, "133700000000000000")
	require.NoError(t, statsLedger.AddWeiSpent(owner, user1, spent))
	require.Equal(t, wei(t, "13370000000000000000"), engine.Points(user1))
	require.Equal(t, int64(0), engine.Points(user2).Int64())

	// Bonus points already include the multiplier.
	require.NoError(t, engine.AddBonusPoints(owner, user1, wei(t, "690000000000000000")))
	require.Equal(t, wei(t, "14060000000000000000"), engine.Points(user1))

	require.NoError(t, engine.AddBonusPoints(owner, user2, wei(t, "4206900000000000000")))
	require.Equal(t, wei(t, "4206900000000000000"), engine.Points(user2))

	require.NoError(t, engine.RemoveBonusPoints(owner, user1, wei(t, "60000000000000000")))
	require.NoError(t, engine.RemoveBonusPoints(owner, user2, wei(t, "6900000000000000")))
	require.Equal(t, wei(t, "14000000000000000000"), engine.Points(user1))
	require.Equal(t, wei(t, "4200000000000000000"), engine.Points(user2))

	// Bonus wei is raw, before the multiplier.
	bonusWei := wei(t, "420000000000000000")
	require.NoError(t, engine.AddBonusWei(owner, user1, bonusWei))
	require.Equal(t, wei(t, "56000000000000000000"), engine.Points(user1))
	require.NoError(t, engine.RemoveBonusWei(owner, user1, bonusWei))
	require.Equal(t, wei(t, "14000000000000000000"), engine.Points(user1))

	tooMuch := wei(t, "1000000000000000000000")
	require.ErrorIs(t, engine.RemoveBonusWei(owner, user1, tooMuch), points.ErrNotEnoughBonusWei)
	require.ErrorIs(t, engine.RemoveBonusPoints(owner, user1, tooMuch), points.ErrNotEnoughBonusPoints)

	// Raising the multiplier rescales every balance, spend included.
	require.NoError(t, engine.SetMultiplier(owner, big.NewInt(1000)))
	require.Equal(t, wei(t, "140000000000000000000"), engine.Points(user1))
	require.Equal(t, wei(t, "42000000000000000000"), engine.Points(user2))
}

func TestPointsAuthorization(t *testing.T) {
	owner := addr(1)
	outsider := addr(9)
	engine := points.New(owner, stats.New(owner), nil, big.NewInt(100))

	require.Error(t, engine.AddBonusWei(outsider, addr(2), big.NewInt(1)))
	require.Error(t, engine.SetMultiplier(outsider, big.NewInt(5)))
	require.ErrorIs(t, engine.SetMultiplier(owner, big.NewInt(0)), points.ErrInvalidMultiplier)

	// Managers are allowed.
	require.NoError(t, engine.Access().AddManager(owner, outsider))
	require.NoError(t, engine.AddBonusWei(outsider, addr(2), big.NewInt(1)))
}

func TestPointsSumTwoSources(t *testing.T) {
	owner := addr(1)
	user := addr(2)

	first := stats.New(owner)
	second := stats.New(owner)
	require.NoError(t, first.SetWriter(owner, owner))
	require.NoError(t, second.SetWriter(owner, owner))
	require.NoError(t, first.AddWeiSpent(owner, user, big.NewInt(3)))
	require.NoError(t, second.AddWeiSpent(owner, user, big.NewInt(4)))

	engine := points.New(owner, first, second, big.NewInt(10))
	require.Equal(t, int64(70), engine.Points(user).Int64())
}
