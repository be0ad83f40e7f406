package store

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"admin-backend/internal/data/entity"
	"admin-backend/internal/data/query"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUser(username string, active bool) *entity.User {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &entity.User{
		Base:         entity.Base{ID: uuid.New(), CreatedAt: now, UpdatedAt: now},
		Role:         entity.RoleUser,
		AccountName:  username,
		Username:     username,
		PasswordHash: "$2a$10$hash",
		IsActive:     active,
	}
}

func seedUsers(t *testing.T, s Store[entity.User], users ...*entity.User) {
	t.Helper()
	for _, u := range users {
		require.NoError(t, s.Create(context.Background(), u))
	}
}

func usernames(users []*entity.User) []string {
	out := make([]string, len(users))
	for i, u := range users {
		out[i] = u.Username
	}
	return out
}

// runStoreSuite checks behavior every Store implementation must share.
func runStoreSuite(t *testing.T, newStore func(t *testing.T) Store[entity.User]) {
	ctx := context.Background()

	t.Run("create and find one", func(t *testing.T) {
		s := newStore(t)
		alice := newUser("alice", true)
		phone := "0812"
		alice.Phone = &phone
		seedUsers(t, s, alice)

		got, err := s.FindOne(ctx, query.Where(entity.FieldID, query.EQ, alice.ID.String()), entity.Projection{})
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, "alice", got.Username)
		assert.Equal(t, "$2a$10$hash", got.PasswordHash)
		require.NotNil(t, got.Phone)
		assert.Equal(t, "0812", *got.Phone)
		assert.Nil(t, got.DeviceID)
		assert.True(t, got.CreatedAt.Equal(alice.CreatedAt))
	})

	t.Run("find one absent returns nil", func(t *testing.T) {
		s := newStore(t)
		got, err := s.FindOne(ctx, query.Where(entity.UserFieldUsername, query.EQ, "ghost"), entity.Projection{})
		assert.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("projection hides password", func(t *testing.T) {
		s := newStore(t)
		seedUsers(t, s, newUser("alice", true))

		got, err := s.FindOne(ctx, query.Where(entity.UserFieldUsername, query.EQ, "alice"), entity.PublicUser)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got.PasswordHash)
	})

	t.Run("duplicate username", func(t *testing.T) {
		s := newStore(t)
		seedUsers(t, s, newUser("alice", true))
		err := s.Create(ctx, newUser("alice", true))
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("filter sort and paginate", func(t *testing.T) {
		s := newStore(t)
		seedUsers(t, s,
			newUser("carol", true),
			newUser("alice", true),
			newUser("bob", false),
			newUser("alfred", true),
		)

		pred, err := query.ParseAndCompile([]string{"isActive:eq:true", "username:sw:al"})
		require.NoError(t, err)

		found, err := s.Find(ctx, pred, FindOptions{Sort: &query.Sort{Field: entity.UserFieldUsername, Direction: query.Desc}})
		require.NoError(t, err)
		assert.Equal(t, []string{"alice", "alfred"}, usernames(found))

		n, err := s.Count(ctx, pred)
		require.NoError(t, err)
		assert.Equal(t, int64(2), n)

		page, err := s.Find(ctx, query.Predicate{}, FindOptions{
			Sort:       &query.Sort{Field: entity.UserFieldUsername, Direction: query.Asc},
			Pagination: &query.Pagination{Page: 2, PageSize: 3},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"carol"}, usernames(page))
	})

	t.Run("contains is case insensitive", func(t *testing.T) {
		s := newStore(t)
		seedUsers(t, s, newUser("AliceW", true), newUser("bob", true))

		found, err := s.Find(ctx, query.Where(entity.UserFieldUsername, query.CN, "icew"), FindOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"AliceW"}, usernames(found))
	})

	t.Run("text operators fold non-ascii case", func(t *testing.T) {
		s := newStore(t)
		seedUsers(t, s, newUser("Élodie", true), newUser("ÖZGÜR", true), newUser("elena", true))

		found, err := s.Find(ctx, query.Where(entity.UserFieldUsername, query.CN, "élo"), FindOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"Élodie"}, usernames(found))

		found, err = s.Find(ctx, query.Where(entity.UserFieldUsername, query.SW, "özg"), FindOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"ÖZGÜR"}, usernames(found))
	})

	t.Run("sort by createdAt desc", func(t *testing.T) {
		s := newStore(t)
		base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		first, second, third := newUser("first", true), newUser("second", true), newUser("third", true)
		first.CreatedAt = base
		second.CreatedAt = base.Add(250 * time.Millisecond)
		third.CreatedAt = base.Add(1500 * time.Millisecond)
		seedUsers(t, s, second, third, first)

		sort, err := query.ParseSort("createdAt:desc")
		require.NoError(t, err)

		found, err := s.Find(ctx, query.Predicate{}, FindOptions{Sort: sort})
		require.NoError(t, err)
		assert.Equal(t, []string{"third", "second", "first"}, usernames(found))
	})

	t.Run("unset values sort first ascending", func(t *testing.T) {
		s := newStore(t)
		withPhone := newUser("with-phone", true)
		phone := "0812"
		withPhone.Phone = &phone
		seedUsers(t, s, withPhone, newUser("no-phone", true))

		asc, err := s.Find(ctx, query.Predicate{}, FindOptions{Sort: &query.Sort{Field: entity.UserFieldPhone, Direction: query.Asc}})
		require.NoError(t, err)
		assert.Equal(t, []string{"no-phone", "with-phone"}, usernames(asc))

		desc, err := s.Find(ctx, query.Predicate{}, FindOptions{Sort: &query.Sort{Field: entity.UserFieldPhone, Direction: query.Desc}})
		require.NoError(t, err)
		assert.Equal(t, []string{"with-phone", "no-phone"}, usernames(desc))
	})

	t.Run("in and not in", func(t *testing.T) {
		s := newStore(t)
		seedUsers(t, s, newUser("a", true), newUser("b", true), newUser("c", true))

		in, err := s.Find(ctx, query.Where(entity.UserFieldUsername, query.IN, "a,c"), FindOptions{
			Sort: &query.Sort{Field: entity.UserFieldUsername},
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"a", "c"}, usernames(in))

		ni, err := s.Count(ctx, query.Where(entity.UserFieldUsername, query.NI, "a,c"))
		require.NoError(t, err)
		assert.Equal(t, int64(1), ni)
	})

	t.Run("ne matches unset nullable field", func(t *testing.T) {
		s := newStore(t)
		bound := newUser("bound", true)
		device := "device-A"
		bound.DeviceID = &device
		seedUsers(t, s, bound, newUser("free", true))

		found, err := s.Find(ctx, query.Where(entity.UserFieldDeviceID, query.NE, "device-A"), FindOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"free"}, usernames(found))
	})

	t.Run("time comparison", func(t *testing.T) {
		s := newStore(t)
		old := newUser("old", true)
		old.CreatedAt = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
		seedUsers(t, s, old, newUser("new", true))

		found, err := s.Find(ctx, query.Where(entity.FieldCreatedAt, query.GT, "2021-01-01T00:00:00Z"), FindOptions{})
		require.NoError(t, err)
		assert.Equal(t, []string{"new"}, usernames(found))
	})

	t.Run("update by id", func(t *testing.T) {
		s := newStore(t)
		alice := newUser("alice", true)
		seedUsers(t, s, alice)

		updated, err := s.UpdateByID(ctx, alice.ID, Patch{entity.UserFieldIsActive: false, entity.UserFieldPhone: "0800"})
		require.NoError(t, err)
		assert.False(t, updated.IsActive)
		require.NotNil(t, updated.Phone)
		assert.Equal(t, "0800", *updated.Phone)

		cleared, err := s.UpdateByID(ctx, alice.ID, Patch{entity.UserFieldPhone: nil})
		require.NoError(t, err)
		assert.Nil(t, cleared.Phone)

		_, err = s.UpdateByID(ctx, uuid.New(), Patch{entity.UserFieldIsActive: true})
		assert.ErrorIs(t, err, ErrNotFound)

		_, err = s.UpdateByID(ctx, alice.ID, Patch{"nope": 1})
		assert.ErrorIs(t, err, ErrInvalidQuery)
	})

	t.Run("update to taken username", func(t *testing.T) {
		s := newStore(t)
		alice, bob := newUser("alice", true), newUser("bob", true)
		seedUsers(t, s, alice, bob)

		_, err := s.UpdateByID(ctx, bob.ID, Patch{entity.UserFieldUsername: "alice"})
		assert.ErrorIs(t, err, ErrDuplicate)
	})

	t.Run("update if guard", func(t *testing.T) {
		s := newStore(t)
		alice := newUser("alice", true)
		seedUsers(t, s, alice)

		guardA := Guard{Field: entity.UserFieldDeviceID, Value: "device-A"}
		bound, err := s.UpdateIf(ctx, alice.ID, guardA, Patch{entity.UserFieldDeviceID: "device-A"})
		require.NoError(t, err)
		assert.True(t, bound.BoundTo("device-A"))

		// same device again is allowed
		_, err = s.UpdateIf(ctx, alice.ID, guardA, Patch{entity.UserFieldDeviceID: "device-A"})
		require.NoError(t, err)

		guardB := Guard{Field: entity.UserFieldDeviceID, Value: "device-B"}
		_, err = s.UpdateIf(ctx, alice.ID, guardB, Patch{entity.UserFieldDeviceID: "device-B"})
		assert.ErrorIs(t, err, ErrGuardRejected)

		_, err = s.UpdateIf(ctx, uuid.New(), guardB, Patch{entity.UserFieldDeviceID: "device-B"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("concurrent update if has one winner", func(t *testing.T) {
		s := newStore(t)
		alice := newUser("alice", true)
		seedUsers(t, s, alice)

		const workers = 8
		var wins atomic.Int32
		var wg sync.WaitGroup
		for i := 0; i < workers; i++ {
			wg.Add(1)
			go func(device string) {
				defer wg.Done()
				_, err := s.UpdateIf(ctx, alice.ID,
					Guard{Field: entity.UserFieldDeviceID, Value: device},
					Patch{entity.UserFieldDeviceID: device})
				if err == nil {
					wins.Add(1)
				}
			}(uuid.NewString())
		}
		wg.Wait()
		assert.Equal(t, int32(1), wins.Load())
	})

	t.Run("remove", func(t *testing.T) {
		s := newStore(t)
		alice := newUser("alice", true)
		seedUsers(t, s, alice)

		removed, err := s.RemoveByID(ctx, alice.ID)
		require.NoError(t, err)
		assert.Equal(t, "alice", removed.Username)

		_, err = s.RemoveByID(ctx, alice.ID)
		assert.ErrorIs(t, err, ErrNotFound)
	})
}
