package mysql

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/db/dao"
	"github.com/onemsu/onemsu-be/model"
	"github.com/upper/db/v4"
)

type PostDB struct {
	sess db.Session
}

func getPostDB(sess db.Session) *PostDB {
	return &PostDB{sess}
}

func (pdb *PostDB) CreatePost(ctx context.Context, req *appDb.CreatePost) (string, error) {
	postId := uuid.NewString()
	_, err := pdb.sess.SQL().
		InsertInto("post").
		Columns("id", "author_id", "group_id", "campus", "text", "image_url", "audio_url").
		Values(postId, req.AuthorId, dao.ToNullString(req.GroupId), req.Campus, req.Text, req.ImageURL, req.AudioURL).
		ExecContext(ctx)
	if err != nil {
		return "", err
	}
	return postId, nil
}

type flattenedPost struct {
	Id                string         `db:"id"`
	AuthorId          string         `db:"author_id"`
	AuthorDisplayName string         `db:"author_display_name"`
	AuthorUsername    string         `db:"author_username"`
	AuthorAvatarURL   string         `db:"author_avatar_url"`
	GroupId           dao.NullString `db:"group_id"`
	Campus            string         `db:"campus"`
	Text              string         `db:"text"`
	ImageURL          string         `db:"image_url"`
	AudioURL          string         `db:"audio_url"`
	LikeCount         int            `db:"like_count"`
	CommentCount      int            `db:"comment_count"`
	ViewerLiked       bool           `db:"viewer_liked"`
	CreatedAt         time.Time      `db:"created_at"`
}

var postColumns = []interface{}{
	"p.id",
	"p.author_id",
	"person.display_name as author_display_name",
	"person.username as author_username",
	"person.avatar_url as author_avatar_url",
	"p.group_id",
	"p.campus",
	"p.text",
	"p.image_url",
	"p.audio_url",
	"p.like_count",
	"p.comment_count",
	"p.created_at",
	db.Raw("pl.user_id IS NOT NULL AS viewer_liked"),
}

func (pdb *PostDB) GetPostById(ctx context.Context, id string, opts *appDb.PostQueryOpts) (*model.Post, error) {
	var post flattenedPost
	if err := pdb.sess.SQL().
		Select(postColumns...).
		From("post AS p").
		Join("person").On("p.author_id = person.id").
		// TODO: This can be optimized: don't join if LikeHistoryOf empty
		LeftJoin("post_like as pl").On("pl.post_id = p.id AND pl.user_id = ?", opts.LikeHistoryOf).
		Where("p.id = ?", id).
		IteratorContext(ctx).
		One(&post); err != nil {
		if err == db.ErrNoMoreRows {
			return nil, nil
		}
		return nil, err
	}
	return buildPostFromFlattened(&post), nil
}

func (pdb *PostDB) GetPosts(ctx context.Context, query *appDb.PostsListQuery) ([]*model.Post, error) {
	likeHistoryOf := ""
	if query.PostQueryOpts != nil {
		likeHistoryOf = query.LikeHistoryOf
	}
	var flattenedPosts []flattenedPost
	if err := pdb.sess.SQL().
		Select(postColumns...).
		From("post as p").
		Join("person").On("p.author_id = person.id").
		LeftJoin("post_like as pl").On("pl.post_id = p.id AND pl.user_id = ?", likeHistoryOf).
		Where("(ISNULL(?) OR (p.created_at < ? OR p.created_at = ? AND (? = '' OR p.id < ?)))",
			query.From, query.From, query.From, query.LastId, query.LastId).
		And("(? = '' OR p.group_id = ?)", query.GroupId, query.GroupId).
		And("(ISNULL(?) OR p.author_id IN ?)", query.AuthorIds, query.AuthorIds).
		And("(ISNULL(?) OR p.author_id NOT IN ?)", query.ExcludeAuthorIds, query.ExcludeAuthorIds).
		OrderBy("p.created_at DESC", "p.id DESC").
		Limit(query.Limit).
		IteratorContext(ctx).
		All(&flattenedPosts); err != nil {
		return nil, err
	}
	posts := make([]*model.Post, len(flattenedPosts))
	for i, flattened := range flattenedPosts {
		posts[i] = buildPostFromFlattened(&flattened)
	}
	return posts, nil
}

func buildPostFromFlattened(post *flattenedPost) *model.Post {
	return &model.Post{
		Id: post.Id,
		Author: &model.Author{
			Id:          post.AuthorId,
			DisplayName: post.AuthorDisplayName,
			Username:    post.AuthorUsername,
			AvatarURL:   post.AuthorAvatarURL,
		},
		GroupId:        post.GroupId.AsString(),
		Campus:         post.Campus,
		Text:           post.Text,
		ImageURL:       post.ImageURL,
		AudioURL:       post.AudioURL,
		LikeCount:      post.LikeCount,
		CommentCount:   post.CommentCount,
		ViewerHasLiked: post.ViewerLiked,
		CreatedAt:      post.CreatedAt,
	}
}

func (pdb *PostDB) DeletePost(ctx context.Context, id string) error {
	return pdb.sess.TxContext(ctx, func(sess db.Session) error {
		for _, table := range []string{"post_like", "comment"} {
			if _, err := sess.SQL().
				DeleteFrom(table).
				Where("post_id = ?", id).
				ExecContext(ctx); err != nil {
				return err
			}
		}
		_, err := sess.SQL().
			DeleteFrom("post").
			Where("id = ?", id).
			ExecContext(ctx)
		return err
	}, nil)
}

func (pdb *PostDB) ToggleLike(ctx context.Context, userId, postId string) (bool, int, error) {
	var liked bool
	var likeCount int
	err := pdb.sess.TxContext(ctx, func(sess db.Session) error {
		row, err := sess.SQL().QueryRowContext(ctx, `SELECT 1 FROM post_like
																WHERE post_id = ? AND user_id = ?
															FOR UPDATE`,
			postId, userId)
		if err != nil {
			return err
		}
		var exists int
		hasLike := true
		if err := row.Scan(&exists); err != nil {
			if err != sql.ErrNoRows && err != db.ErrNoMoreRows {
				return err
			}
			hasLike = false
		}

		delta := 1
		if hasLike {
			if _, err := sess.SQL().
				DeleteFrom("post_like").
				Where("post_id = ? AND user_id = ?", postId, userId).
				ExecContext(ctx); err != nil {
				return err
			}
			delta = -1
		} else {
			if _, err := sess.SQL().
				InsertInto("post_like").
				Columns("post_id", "user_id").
				Values(postId, userId).
				ExecContext(ctx); err != nil {
				return err
			}
		}
		liked = !hasLike

		if _, err := sess.SQL().
			Update("post").
			Set(db.Raw("like_count = like_count + ?", delta)).
			Where("id = ?", postId).
			ExecContext(ctx); err != nil {
			return err
		}
		countRow, err := sess.SQL().QueryRowContext(ctx,
			`SELECT like_count FROM post WHERE id = ?`, postId)
		if err != nil {
			return err
		}
		return countRow.Scan(&likeCount)
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	return liked, likeCount, err
}

func (pdb *PostDB) CreateComment(ctx context.Context, req *appDb.CreateComment) (string, error) {
	commentId := uuid.NewString()
	err := pdb.sess.TxContext(ctx, func(sess db.Session) error {
		if _, err := sess.SQL().
			InsertInto("comment").
			Columns("id", "post_id", "author_id", "text").
			Values(commentId, req.PostId, req.AuthorId, req.Text).
			ExecContext(ctx); err != nil {
			return err
		}
		_, err := sess.SQL().
			Update("post").
			Set(db.Raw("comment_count = comment_count + 1")).
			Where("id = ?", req.PostId).
			ExecContext(ctx)
		return err
	}, nil)
	if err != nil {
		return "", err
	}
	return commentId, nil
}

type flattenedComment struct {
	Id                string    `db:"id"`
	PostId            string    `db:"post_id"`
	AuthorId          string    `db:"author_id"`
	AuthorDisplayName string    `db:"author_display_name"`
	AuthorUsername    string    `db:"author_username"`
	AuthorAvatarURL   string    `db:"author_avatar_url"`
	Text              string    `db:"text"`
	CreatedAt         time.Time `db:"created_at"`
}

func (pdb *PostDB) GetComments(ctx context.Context, postId string) ([]*model.Comment, error) {
	var flattenedComments []flattenedComment
	if err := pdb.sess.SQL().
		Select("c.id", "c.post_id", "c.author_id",
			"person.display_name as author_display_name",
			"person.username as author_username",
			"person.avatar_url as author_avatar_url",
			"c.text", "c.created_at").
		From("comment as c").
		Join("person").On("c.author_id = person.id").
		Where("c.post_id = ?", postId).
		OrderBy("c.created_at").
		IteratorContext(ctx).
		All(&flattenedComments); err != nil {
		return nil, err
	}
	comments := make([]*model.Comment, len(flattenedComments))
	for i, flattened := range flattenedComments {
		comments[i] = &model.Comment{
			Id:     flattened.Id,
			PostId: flattened.PostId,
			Author: &model.Author{
				Id:          flattened.AuthorId,
				DisplayName: flattened.AuthorDisplayName,
				Username:    flattened.AuthorUsername,
				AvatarURL:   flattened.AuthorAvatarURL,
			},
			Text:      flattened.Text,
			CreatedAt: flattened.CreatedAt,
		}
	}
	return comments, nil
}
