package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyJSON(t *testing.T) {
	b, err := json.Marshal(struct {
		Total Money `json:"total"`
	}{MustMoney("20")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":"20.00"}`, string(b))

	var in struct {
		Total Money `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"total":"12.5"}`), &in))
	assert.Equal(t, "12.50", in.Total.String())
}

func TestMoneyArithmetic(t *testing.T) {
	assert.Equal(t, "30.30", MustMoney("10.10").Times(3).String())
	assert.True(t, MustMoney("0.10").Add(MustMoney("0.20")).SameAmount(MustMoney("0.30")))
	assert.Equal(t, "0.00", Money{}.String())
}

func TestIsMoneyString(t *testing.T) {
	for _, s := range []string{"0", "20", "20.0", "20.00"} {
		assert.True(t, IsMoneyString(s), s)
	}
	for _, s := range []string{"", "-1", "1.234", "abc", "1e3", ".5"} {
		assert.False(t, IsMoneyString(s), s)
	}
}

func TestEnums(t *testing.T) {
	assert.True(t, IsCategory(CategoryLegoSets))
	assert.False(t, IsCategory("robots"))
	assert.True(t, IsOrderStatus(OrderStatusShipped))
	assert.False(t, IsOrderStatus("lost"))
	assert.True(t, IsRole(RoleManager))
	assert.False(t, IsRole("root"))
}

func TestUserPassword(t *testing.T) {
	u := &User{}
	require.NoError(t, u.SetPassword("s3cret!"))
	assert.NotContains(t, u.PasswordHash, "s3cret!")
	assert.True(t, u.CheckPassword("s3cret!"))
	assert.False(t, u.CheckPassword("wrong"))

	b, err := json.Marshal(u)
	require.NoError(t, err)
	assert.NotContains(t, string(b), u.PasswordHash)
}
