package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"Anon_Board/internal/model"
)

func TestCreatePostValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	_, err := env.posts.CreatePost(ctx, "alice", " ", "body")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.posts.CreatePost(ctx, "alice", "title", "")
	assert.ErrorIs(t, err, ErrValidation)
	_, err = env.posts.CreatePost(ctx, "ghost", "title", "body")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestUpdatePostOwnership(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice", "bob")

	post, err := env.posts.CreatePost(ctx, "alice", "original", "body")
	require.NoError(t, err)

	_, err = env.posts.UpdatePost(ctx, post.ID, "bob", "hijacked", "x")
	assert.ErrorIs(t, err, ErrForbidden)
	assert.NotErrorIs(t, err, ErrNotFound)

	got, err := env.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, "original", got.Title)

	updated, err := env.posts.UpdatePost(ctx, post.ID, "alice", "edited", "new body")
	require.NoError(t, err)
	assert.Equal(t, "edited", updated.Title)

	_, err = env.posts.UpdatePost(ctx, 9999, "alice", "t", "c")
	assert.ErrorIs(t, err, ErrPostNotFound)
}

func TestDeletePost(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice", "bob")

	post, err := env.posts.CreatePost(ctx, "alice", "title", "body")
	require.NoError(t, err)
	c, err := env.comments.CreateComment(ctx, post.ID, "bob", "hello")
	require.NoError(t, err)
	_, err = env.recs.Toggle(ctx, post.ID, "bob")
	require.NoError(t, err)

	// 非作者删除：拒绝且什么都不改
	err = env.posts.DeletePost(ctx, post.ID, "bob")
	assert.ErrorIs(t, err, ErrForbidden)
	got, err := env.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.RecommendationCount)

	require.NoError(t, env.posts.DeletePost(ctx, post.ID, "alice"))

	_, err = env.posts.GetPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = env.posts.RecordView(ctx, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)
	_, err = env.comments.ListByPost(ctx, post.ID)
	assert.ErrorIs(t, err, ErrPostNotFound)

	var comment model.Comment
	require.NoError(t, env.db.First(&comment, c.ID).Error)
	assert.True(t, comment.IsDeleted)

	var rows int64
	require.NoError(t, env.db.Model(&model.Recommendation{}).Where("post_id = ?", post.ID).Count(&rows).Error)
	assert.Zero(t, rows)

	liked, err := env.recs.IsLiked(ctx, post.ID, "bob")
	require.NoError(t, err)
	assert.False(t, liked)

	assert.ErrorIs(t, env.posts.DeletePost(ctx, post.ID, "alice"), ErrPostNotFound)
}

func TestRecordViewConcurrent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	post, err := env.posts.CreatePost(ctx, "alice", "title", "body")
	require.NoError(t, err)

	const n = 40
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.posts.RecordView(ctx, post.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	got, err := env.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n), got.ViewCount)

	viewed, err := env.posts.RecordView(ctx, post.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(n+1), viewed.ViewCount)
}

func TestGetPostDoesNotCountViews(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice")

	post, err := env.posts.CreatePost(ctx, "alice", "title", "body")
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = env.posts.GetPost(ctx, post.ID)
		require.NoError(t, err)
	}
	got, err := env.posts.GetPost(ctx, post.ID)
	require.NoError(t, err)
	assert.Zero(t, got.ViewCount)
}

func TestListPostsQueries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.register(t, "alice", "bob")

	var ids []uint64
	for i := 0; i < 12; i++ {
		p, err := env.posts.CreatePost(ctx, "alice", "title", "body")
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}
	_, err := env.posts.CreatePost(ctx, "bob", "bob's", "body")
	require.NoError(t, err)

	all, err := env.posts.ListPosts(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 13)

	latest, err := env.posts.ListLatest(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, latest, DefaultLatestLimit)

	mine, err := env.posts.ListByUser(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, mine, 12)

	_, err = env.recs.Toggle(ctx, ids[3], "bob")
	require.NoError(t, err)
	popular, err := env.posts.ListPopular(ctx, DefaultPopularMin, 0)
	require.NoError(t, err)
	assert.Empty(t, popular)

	popular, err = env.posts.ListPopular(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, popular, 1)
	assert.Equal(t, ids[3], popular[0].ID)
}
