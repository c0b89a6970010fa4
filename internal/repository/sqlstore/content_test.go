package sqlstore_test

import (
	"context"
	"testing"
	"time"

	"github.com/Olprog59/go-familyhub/internal/domain"
	"github.com/Olprog59/go-familyhub/internal/repository"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type family struct {
	adapter *repository.Adapter
	alice   *domain.User
	bob     *domain.User
}

func newFamily(t *testing.T) family {
	t.Helper()
	adapter, _ := repository.NewTestAdapter(t)
	ctx := context.Background()
	alice, err := adapter.UserRepository().Create(ctx, "alice@example.com", "pw", "Alice")
	require.NoError(t, err)
	bob, err := adapter.UserRepository().Create(ctx, "bob@example.com", "pw", "Bob")
	require.NoError(t, err)
	return family{adapter: adapter, alice: alice, bob: bob}
}

func TestPostRepository_CRUD(t *testing.T) {
	f := newFamily(t)
	ctx := context.Background()
	posts := f.adapter.PostRepository()

	post, err := posts.Create(ctx, f.alice.ID, domain.PostInput{Content: "First day of school", ImageURL: "/media/a.jpg"})
	require.NoError(t, err)
	assert.Equal(t, "Alice", post.Author.DisplayName)
	assert.Equal(t, "/media/a.jpg", post.ImageURL)
	assert.Zero(t, post.CommentCount)
	assert.False(t, post.WasEdited())

	post.Content = "First day of school!"
	require.NoError(t, posts.Update(ctx, post))

	got, err := posts.GetByID(ctx, post.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, "First day of school!", got.Content)

	_, err = f.adapter.CommentRepository().Create(ctx, post.ID, f.bob.ID, domain.CommentInput{Content: "Congrats"})
	require.NoError(t, err)
	got, err = posts.GetByID(ctx, post.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.CommentCount)

	require.NoError(t, posts.Delete(ctx, post.ID))
	_, err = posts.GetByID(ctx, post.ID, 0)
	assert.ErrorIs(t, err, repository.ErrNoRecord)
	assert.ErrorIs(t, posts.Delete(ctx, post.ID), repository.ErrNoRecord)
}

func TestPostRepository_ListFilters(t *testing.T) {
	f := newFamily(t)
	ctx := context.Background()
	posts := f.adapter.PostRepository()
	reactions := f.adapter.ReactionRepository()

	p1, err := posts.Create(ctx, f.alice.ID, domain.PostInput{Content: "Pancakes for breakfast"})
	require.NoError(t, err)
	p2, err := posts.Create(ctx, f.bob.ID, domain.PostInput{Content: "Soccer match at 5"})
	require.NoError(t, err)
	_, err = posts.Create(ctx, f.alice.ID, domain.PostInput{Content: "100% ready for the trip"})
	require.NoError(t, err)

	all, total, err := posts.List(ctx, domain.PostFilter{}, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, all, 3)

	byAuthor, total, err := posts.List(ctx, domain.PostFilter{AuthorID: f.alice.ID}, 0)
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	for _, p := range byAuthor {
		assert.Equal(t, f.alice.ID, p.Author.ID)
	}

	found, _, err := posts.List(ctx, domain.PostFilter{Query: "PANCAKES"}, 0)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, p1.ID, found[0].ID)

	found, _, err = posts.List(ctx, domain.PostFilter{Query: "100%"}, 0)
	require.NoError(t, err)
	require.Len(t, found, 1, "percent sign is matched literally")

	_, err = reactions.AddBookmark(ctx, domain.Target{Type: domain.TargetPost, ID: p2.ID}, f.alice.ID)
	require.NoError(t, err)
	saved, total, err := posts.List(ctx, domain.PostFilter{BookmarkedBy: f.alice.ID}, f.alice.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, saved, 1)
	assert.Equal(t, p2.ID, saved[0].ID)
	assert.True(t, saved[0].Viewer.Bookmarked)

	paged, total, err := posts.List(ctx, domain.PostFilter{Page: domain.NewPage(2, 2)}, 0)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	assert.Len(t, paged, 1)

	many, err := posts.GetMany(ctx, []int64{p2.ID, 999, p1.ID}, 0)
	require.NoError(t, err)
	require.Len(t, many, 2)
	assert.Equal(t, p2.ID, many[0].ID)
	assert.Equal(t, p1.ID, many[1].ID)
}

func TestReactionRepository(t *testing.T) {
	f := newFamily(t)
	ctx := context.Background()
	reactions := f.adapter.ReactionRepository()

	post, err := f.adapter.PostRepository().Create(ctx, f.alice.ID, domain.PostInput{Content: "New puppy"})
	require.NoError(t, err)
	target := domain.Target{Type: domain.TargetPost, ID: post.ID}

	ok, err := reactions.Exists(ctx, target)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = reactions.Exists(ctx, domain.Target{Type: domain.TargetSharePost, ID: post.ID})
	require.NoError(t, err)
	assert.False(t, ok)

	added, err := reactions.AddReaction(ctx, target, f.bob.ID, domain.ReactionLove)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = reactions.AddReaction(ctx, target, f.bob.ID, domain.ReactionLove)
	require.NoError(t, err)
	assert.False(t, added, "same reaction twice is ignored")

	_, err = reactions.AddReaction(ctx, target, f.bob.ID, domain.ReactionLaugh)
	require.NoError(t, err)
	_, err = reactions.AddReaction(ctx, target, f.alice.ID, domain.ReactionLove)
	require.NoError(t, err)

	counts, err := reactions.Counts(ctx, target)
	require.NoError(t, err)
	assert.Equal(t, domain.ReactionCounts{domain.ReactionLove: 2, domain.ReactionLaugh: 1}, counts)
	assert.Equal(t, 3, counts.Total())

	got, err := f.adapter.PostRepository().GetByID(ctx, post.ID, f.bob.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []domain.ReactionKind{domain.ReactionLove, domain.ReactionLaugh}, got.Viewer.Reactions)
	assert.Equal(t, 2, got.Reactions[domain.ReactionLove])

	removed, err := reactions.RemoveReaction(ctx, target, f.bob.ID, domain.ReactionLaugh)
	require.NoError(t, err)
	assert.True(t, removed)
	removed, err = reactions.RemoveReaction(ctx, target, f.bob.ID, domain.ReactionLaugh)
	require.NoError(t, err)
	assert.False(t, removed)

	added, err = reactions.AddBookmark(ctx, target, f.bob.ID)
	require.NoError(t, err)
	assert.True(t, added)
	added, err = reactions.AddBookmark(ctx, target, f.bob.ID)
	require.NoError(t, err)
	assert.False(t, added)

	bookmarks, err := reactions.ListBookmarks(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, bookmarks, 1)
	assert.Equal(t, target, bookmarks[0].Target)

	// Deleting the post clears its side rows / Supprimer le post efface ses lignes annexes
	require.NoError(t, f.adapter.PostRepository().Delete(ctx, post.ID))
	bookmarks, err = reactions.ListBookmarks(ctx, f.bob.ID)
	require.NoError(t, err)
	assert.Empty(t, bookmarks)
	counts, err = reactions.Counts(ctx, target)
	require.NoError(t, err)
	assert.Zero(t, counts.Total())
}

func TestCommentRepository(t *testing.T) {
	f := newFamily(t)
	ctx := context.Background()
	comments := f.adapter.CommentRepository()

	post, err := f.adapter.PostRepository().Create(ctx, f.alice.ID, domain.PostInput{Content: "Dinner?"})
	require.NoError(t, err)

	first, err := comments.Create(ctx, post.ID, f.bob.ID, domain.CommentInput{Content: "Pizza"})
	require.NoError(t, err)
	assert.Equal(t, "Bob", first.Author.DisplayName)
	_, err = comments.Create(ctx, post.ID, f.alice.ID, domain.CommentInput{Content: "Again?"})
	require.NoError(t, err)

	list, total, err := comments.ListByPost(ctx, post.ID, domain.Page{})
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, list, 2)
	assert.Equal(t, "Pizza", list[0].Content, "oldest first")

	first.Content = "Sushi"
	require.NoError(t, comments.Update(ctx, first))
	got, err := comments.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sushi", got.Content)

	require.NoError(t, comments.Delete(ctx, first.ID))
	_, err = comments.GetByID(ctx, first.ID)
	assert.ErrorIs(t, err, repository.ErrNoRecord)

	_, err = comments.Create(ctx, 999, f.bob.ID, domain.CommentInput{Content: "orphan"})
	assert.ErrorIs(t, err, repository.ErrForeignKeyViolation)
}

func TestEventRepository_ListOverlap(t *testing.T) {
	f := newFamily(t)
	ctx := context.Background()
	events := f.adapter.EventRepository()

	day := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := day.Add(3 * 24 * time.Hour)

	camp, err := events.Create(ctx, f.alice.ID, domain.EventInput{Title: "Camp", StartsAt: day, EndsAt: &end, AllDay: true})
	require.NoError(t, err)
	dentist, err := events.Create(ctx, f.bob.ID, domain.EventInput{Title: "Dentist", StartsAt: day.Add(10 * 24 * time.Hour)})
	require.NoError(t, err)
	assert.Nil(t, dentist.EndsAt)
	assert.Equal(t, "Bob", dentist.Creator.DisplayName)

	tests := []struct {
		name string
		from time.Time
		to   time.Time
		want []int64
	}{
		{"whole month", day, day.AddDate(0, 1, 0), []int64{camp.ID, dentist.ID}},
		{"inside multi-day event", day.Add(48 * time.Hour), day.Add(72 * time.Hour), []int64{camp.ID}},
		{"point event on window start", dentist.StartsAt, dentist.StartsAt.Add(time.Hour), []int64{dentist.ID}},
		{"window end is exclusive", day.Add(-time.Hour), day, nil},
		{"last day of all-day range is inclusive", end, end.Add(24 * time.Hour), []int64{camp.ID}},
		{"day after the range", end.Add(time.Nanosecond), end.Add(24 * time.Hour), nil},
		{"nothing", day.AddDate(1, 0, 0), day.AddDate(1, 1, 0), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, total, err := events.List(ctx, domain.EventFilter{From: tt.from, To: tt.to})
			require.NoError(t, err)
			assert.Equal(t, len(tt.want), total)
			var ids []int64
			for _, e := range list {
				ids = append(ids, e.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}

	mine, _, err := events.List(ctx, domain.EventFilter{CreatorID: f.alice.ID})
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.True(t, mine[0].AllDay)
	require.NotNil(t, mine[0].EndsAt)
	assert.True(t, end.Equal(*mine[0].EndsAt))

	camp.Title = "Summer camp"
	camp.EndsAt = nil
	require.NoError(t, events.Update(ctx, camp))
	got, err := events.GetByID(ctx, camp.ID)
	require.NoError(t, err)
	assert.Equal(t, "Summer camp", got.Title)
	assert.Nil(t, got.EndsAt)

	require.NoError(t, events.Delete(ctx, camp.ID))
	n, err := events.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGoalRepository(t *testing.T) {
	f := newFamily(t)
	ctx := context.Background()
	goals := f.adapter.GoalRepository()

	target := decimal.NewNullDecimal(decimal.NewFromInt(100))
	run, err := goals.Create(ctx, f.alice.ID, domain.GoalInput{Title: "Run 100 km", TargetAmount: target, Unit: "km"})
	require.NoError(t, err)
	assert.False(t, run.Completed)
	assert.True(t, run.Progress.IsZero())

	done, err := goals.Create(ctx, f.alice.ID, domain.GoalInput{
		Title:        "Save",
		TargetAmount: decimal.NewNullDecimal(decimal.NewFromInt(50)),
		Progress:     decimal.NewFromInt(60),
	})
	require.NoError(t, err)
	assert.True(t, done.Completed, "created at target")
	assert.NotNil(t, done.CompletedAt)

	run.AddProgress(decimal.RequireFromString("42.5"), time.Now().UTC())
	require.NoError(t, goals.Update(ctx, run))
	got, err := goals.GetByID(ctx, run.ID)
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("42.5").Equal(got.Progress))
	require.True(t, got.TargetAmount.Valid)
	assert.True(t, decimal.NewFromInt(100).Equal(got.TargetAmount.Decimal))
	assert.Equal(t, "km", got.Unit)

	open, total, err := goals.List(ctx, domain.GoalFilter{OwnerID: f.alice.ID, Status: domain.GoalOpen})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, open, 1)
	assert.Equal(t, run.ID, open[0].ID)

	completed, _, err := goals.List(ctx, domain.GoalFilter{Status: domain.GoalCompleted})
	require.NoError(t, err)
	require.Len(t, completed, 1)
	assert.Equal(t, done.ID, completed[0].ID)

	none, _, err := goals.List(ctx, domain.GoalFilter{OwnerID: f.bob.ID})
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestHelpRequestRepository(t *testing.T) {
	f := newFamily(t)
	ctx := context.Background()
	requests := f.adapter.HelpRequestRepository()

	past := time.Now().UTC().Add(-48 * time.Hour)
	future := time.Now().UTC().Add(48 * time.Hour)

	overdue, err := requests.Create(ctx, f.alice.ID, domain.HelpRequestInput{Title: "Water plants", NeededBy: &past})
	require.NoError(t, err)
	assert.Equal(t, domain.HelpOpen, overdue.Status)
	assert.Nil(t, overdue.Helper)

	claimed, err := requests.Create(ctx, f.alice.ID, domain.HelpRequestInput{Title: "Fix bike", NeededBy: &past})
	require.NoError(t, err)
	require.NoError(t, claimed.Claim(f.bob.Summary()))
	require.NoError(t, requests.Update(ctx, claimed, domain.HelpOpen))

	later, err := requests.Create(ctx, f.bob.ID, domain.HelpRequestInput{Title: "Airport ride", NeededBy: &future})
	require.NoError(t, err)

	got, err := requests.GetByID(ctx, claimed.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Helper)
	assert.Equal(t, "Bob", got.Helper.DisplayName)
	assert.Equal(t, domain.HelpClaimed, got.Status)

	helping, _, err := requests.List(ctx, domain.HelpRequestFilter{HelperID: f.bob.ID})
	require.NoError(t, err)
	require.Len(t, helping, 1)
	assert.Equal(t, claimed.ID, helping[0].ID)

	expired, err := requests.ExpireOverdue(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, []int64{overdue.ID}, expired, "only open requests expire")

	got, err = requests.GetByID(ctx, overdue.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.HelpExpired, got.Status)

	open, total, err := requests.List(ctx, domain.HelpRequestFilter{Status: domain.HelpOpen})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, open, 1)
	assert.Equal(t, later.ID, open[0].ID)

	all, _, err := requests.List(ctx, domain.HelpRequestFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, domain.HelpOpen, all[0].Status, "active requests come first")
	assert.Equal(t, domain.HelpClaimed, all[1].Status)

	// Removing the helper reopens the claim / Supprimer l'aidant rouvre la demande
	require.NoError(t, f.adapter.UserRepository().Delete(ctx, f.bob.ID))
	got, err = requests.GetByID(ctx, claimed.ID)
	require.NoError(t, err)
	assert.Nil(t, got.Helper)
	assert.Equal(t, domain.HelpOpen, got.Status)
}

func TestHelpRequestRepository_UpdateRequiresLoadedStatus(t *testing.T) {
	f := newFamily(t)
	ctx := context.Background()
	requests := f.adapter.HelpRequestRepository()
	carol, err := f.adapter.UserRepository().Create(ctx, "carol@example.com", "pw", "Carol")
	require.NoError(t, err)

	req, err := requests.Create(ctx, f.alice.ID, domain.HelpRequestInput{Title: "Carry boxes"})
	require.NoError(t, err)

	// Two members load the same open request / Deux membres chargent la même demande
	first, err := requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	second, err := requests.GetByID(ctx, req.ID)
	require.NoError(t, err)

	require.NoError(t, first.Claim(f.bob.Summary()))
	require.NoError(t, requests.Update(ctx, first, domain.HelpOpen))

	require.NoError(t, second.Claim(carol.Summary()))
	assert.ErrorIs(t, requests.Update(ctx, second, domain.HelpOpen), repository.ErrStale)

	got, err := requests.GetByID(ctx, req.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Helper)
	assert.Equal(t, f.bob.ID, got.Helper.ID, "first claim kept")

	require.NoError(t, requests.Delete(ctx, req.ID))
	assert.ErrorIs(t, requests.Update(ctx, got, domain.HelpClaimed), repository.ErrNoRecord)
}

func TestSharePostRepository(t *testing.T) {
	f := newFamily(t)
	ctx := context.Background()
	shares := f.adapter.SharePostRepository()

	recipe, err := shares.Create(ctx, f.alice.ID, domain.SharePostInput{
		Title: "Lasagna recipe", URL: "https://example.com/lasagna", Category: "recipes",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", recipe.Author.DisplayName)

	_, err = shares.Create(ctx, f.bob.ID, domain.SharePostInput{
		Title: "Budget app", Description: "Tracks family spending", URL: "https://example.com/budget", Category: "tools",
	})
	require.NoError(t, err)

	list, total, err := shares.List(ctx, domain.SharePostFilter{Category: "Recipes"}, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, list, 1)
	assert.Equal(t, recipe.ID, list[0].ID)

	list, _, err = shares.List(ctx, domain.SharePostFilter{Query: "spending"}, 0)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Budget app", list[0].Title)

	_, err = f.adapter.ReactionRepository().AddReaction(ctx, domain.Target{Type: domain.TargetSharePost, ID: recipe.ID}, f.bob.ID, domain.ReactionWow)
	require.NoError(t, err)
	got, err := shares.GetByID(ctx, recipe.ID, f.bob.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Reactions[domain.ReactionWow])
	assert.Equal(t, []domain.ReactionKind{domain.ReactionWow}, got.Viewer.Reactions)

	got.Title = "Grandma's lasagna"
	require.NoError(t, shares.Update(ctx, got))
	many, err := shares.GetMany(ctx, []int64{recipe.ID}, 0)
	require.NoError(t, err)
	require.Len(t, many, 1)
	assert.Equal(t, "Grandma's lasagna", many[0].Title)

	require.NoError(t, shares.Delete(ctx, recipe.ID))
	n, err := shares.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}
