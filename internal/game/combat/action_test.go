package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toseph-here/kope-quest/internal/game/combat"
)

func TestParseAction_RoundTrip(t *testing.T) {
	for _, action := range []combat.ActionType{
		combat.ActionAttack,
		combat.ActionDefend,
		combat.ActionHeal,
		combat.ActionElementSkill,
	} {
		parsed, err := combat.ParseAction(action.String())
		require.NoError(t, err)
		assert.Equal(t, action, parsed)
	}
}

func TestParseAction_Unknown(t *testing.T) {
	_, err := combat.ParseAction("flee")
	assert.Error(t, err)
	_, err = combat.ParseAction("")
	assert.Error(t, err)
}

func TestActionType_StaminaCost(t *testing.T) {
	assert.Equal(t, 0, combat.ActionAttack.StaminaCost())
	assert.Equal(t, 0, combat.ActionDefend.StaminaCost())
	assert.Equal(t, combat.HealStaminaCost, combat.ActionHeal.StaminaCost())
	assert.Equal(t, combat.ElementSkillStaminaCost, combat.ActionElementSkill.StaminaCost())
}

func TestActionType_Offensive(t *testing.T) {
	assert.True(t, combat.ActionAttack.Offensive())
	assert.True(t, combat.ActionElementSkill.Offensive())
	assert.False(t, combat.ActionDefend.Offensive())
	assert.False(t, combat.ActionHeal.Offensive())
}
