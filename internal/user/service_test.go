package user

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zezinho10632/DouglasApi/internal/contracts"
	"github.com/zezinho10632/DouglasApi/internal/store/memory"
)

func seeded(t *testing.T) *Service {
	t.Helper()
	svc := NewService(memory.New().Repositories())
	users := []contracts.User{
		{Name: "Admin", Email: "admin@douglas.com", Role: contracts.RoleAdmin, JobTitle: contracts.JobAdmin, Active: true},
		{Name: "Ana Souza", Email: "ana.souza@douglas.com", Role: contracts.RoleManager, JobTitle: contracts.JobNurse, Active: true},
		{Name: "Mariana Costa", Email: "mariana@hospital.org", Role: contracts.RoleManager, JobTitle: contracts.JobDoctor, Active: true},
	}
	for _, u := range users {
		_, added, err := svc.Seed(context.Background(), u)
		require.NoError(t, err)
		require.True(t, added)
	}
	return svc
}

func names(users []contracts.User) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		out = append(out, u.Name)
	}
	return out
}

func TestListFilters(t *testing.T) {
	svc := seeded(t)
	ctx := context.Background()

	tests := []struct {
		name  string
		query Query
		want  []string
	}{
		{"no filter", Query{}, []string{"Admin", "Ana Souza", "Mariana Costa"}},
		{"name substring any case", Query{Name: "ANA"}, []string{"Ana Souza", "Mariana Costa"}},
		{"email substring", Query{Email: "douglas"}, []string{"Admin", "Ana Souza"}},
		{"role exact", Query{Role: "manager"}, []string{"Ana Souza", "Mariana Costa"}},
		{"job title exact", Query{JobTitle: "DOCTOR"}, []string{"Mariana Costa"}},
		{"combined with AND", Query{Name: "ana", Email: "douglas"}, []string{"Ana Souza"}},
		{"true negative", Query{Name: "ana", JobTitle: "ADMIN"}, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users, err := svc.List(ctx, tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, names(users))
		})
	}
}

func TestListRejectsUnknownEnums(t *testing.T) {
	svc := seeded(t)

	_, err := svc.List(context.Background(), Query{Role: "OWNER"})
	assert.ErrorIs(t, err, contracts.ErrValidation)
	_, err = svc.List(context.Background(), Query{JobTitle: "PILOT"})
	assert.ErrorIs(t, err, contracts.ErrValidation)
}

func TestSeedIsIdempotent(t *testing.T) {
	svc := seeded(t)

	u, added, err := svc.Seed(context.Background(), contracts.User{Name: "Other", Email: "ADMIN@douglas.com", Role: contracts.RoleAdmin})
	require.NoError(t, err)
	assert.False(t, added)
	assert.Equal(t, "Admin", u.Name)

	_, _, err = svc.Seed(context.Background(), contracts.User{Name: "X", Email: "not-an-email", Role: contracts.RoleAdmin})
	assert.ErrorIs(t, err, contracts.ErrValidation)
}

func TestFindByEmail(t *testing.T) {
	svc := seeded(t)

	u, err := svc.FindByEmail(context.Background(), "  Admin@Douglas.com ")
	require.NoError(t, err)
	assert.Equal(t, "Admin", u.Name)

	_, err = svc.FindByEmail(context.Background(), "nobody@douglas.com")
	assert.ErrorIs(t, err, contracts.ErrNotFound)
}
