package file

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
)

func (fdb *FileDB) CreatePost(ctx context.Context, req *appDb.CreatePost) (string, error) {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	rec := &postRec{
		Id:        uuid.NewString(),
		AuthorId:  req.AuthorId,
		GroupId:   req.GroupId,
		Campus:    req.Campus,
		Text:      req.Text,
		ImageURL:  req.ImageURL,
		AudioURL:  req.AudioURL,
		CreatedAt: time.Now(),
	}
	fdb.data.Posts = append(fdb.data.Posts, rec)
	if err := fdb.save(); err != nil {
		return "", err
	}
	return rec.Id, nil
}

func (fdb *FileDB) findPost(id string) *postRec {
	for _, rec := range fdb.data.Posts {
		if rec.Id == id {
			return rec
		}
	}
	return nil
}

func (fdb *FileDB) buildPost(rec *postRec, likeHistoryOf string) *model.Post {
	liked := false
	if likeHistoryOf != "" {
		for _, like := range fdb.data.Likes {
			if like.PostId == rec.Id && like.UserId == likeHistoryOf {
				liked = true
				break
			}
		}
	}
	return &model.Post{
		Id:             rec.Id,
		Author:         fdb.authorOf(rec.AuthorId),
		GroupId:        rec.GroupId,
		Campus:         rec.Campus,
		Text:           rec.Text,
		ImageURL:       rec.ImageURL,
		AudioURL:       rec.AudioURL,
		LikeCount:      rec.LikeCount,
		CommentCount:   rec.CommentCount,
		ViewerHasLiked: liked,
		CreatedAt:      rec.CreatedAt,
	}
}

func (fdb *FileDB) GetPostById(ctx context.Context, id string, opts *appDb.PostQueryOpts) (*model.Post, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()
	rec := fdb.findPost(id)
	if rec == nil {
		return nil, nil
	}
	return fdb.buildPost(rec, opts.LikeHistoryOf), nil
}

func (fdb *FileDB) GetPosts(ctx context.Context, query *appDb.PostsListQuery) ([]*model.Post, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()

	var matched []*postRec
	for _, rec := range fdb.data.Posts {
		if !matchesPostQuery(rec, query) {
			continue
		}
		matched = append(matched, rec)
	}
	// newest first; id breaks created_at ties, same as the keyset order
	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].Id > matched[j].Id
	})
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}

	likeHistoryOf := ""
	if query.PostQueryOpts != nil {
		likeHistoryOf = query.LikeHistoryOf
	}
	posts := make([]*model.Post, len(matched))
	for i, rec := range matched {
		posts[i] = fdb.buildPost(rec, likeHistoryOf)
	}
	return posts, nil
}

func matchesPostQuery(rec *postRec, query *appDb.PostsListQuery) bool {
	if query.From != nil {
		if rec.CreatedAt.After(*query.From) {
			return false
		}
		if rec.CreatedAt.Equal(*query.From) && query.LastId != "" && rec.Id >= query.LastId {
			return false
		}
	}
	if query.GroupId != "" && rec.GroupId != query.GroupId {
		return false
	}
	if query.AuthorIds != nil && !containsString(query.AuthorIds, rec.AuthorId) {
		return false
	}
	if containsString(query.ExcludeAuthorIds, rec.AuthorId) {
		return false
	}
	return true
}

func containsString(vals []string, target string) bool {
	for _, val := range vals {
		if val == target {
			return true
		}
	}
	return false
}

func (fdb *FileDB) DeletePost(ctx context.Context, id string) error {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	posts := fdb.data.Posts[:0]
	for _, rec := range fdb.data.Posts {
		if rec.Id != id {
			posts = append(posts, rec)
		}
	}
	fdb.data.Posts = posts
	likes := fdb.data.Likes[:0]
	for _, like := range fdb.data.Likes {
		if like.PostId != id {
			likes = append(likes, like)
		}
	}
	fdb.data.Likes = likes
	comments := fdb.data.Comments[:0]
	for _, comment := range fdb.data.Comments {
		if comment.PostId != id {
			comments = append(comments, comment)
		}
	}
	fdb.data.Comments = comments
	return fdb.save()
}

func (fdb *FileDB) ToggleLike(ctx context.Context, userId, postId string) (bool, int, error) {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	rec := fdb.findPost(postId)
	if rec == nil {
		return false, 0, nil
	}
	hasLike := false
	kept := fdb.data.Likes[:0]
	for _, like := range fdb.data.Likes {
		if like.PostId == postId && like.UserId == userId {
			hasLike = true
			continue
		}
		kept = append(kept, like)
	}
	fdb.data.Likes = kept
	if hasLike {
		rec.LikeCount--
	} else {
		fdb.data.Likes = append(fdb.data.Likes, &likeRec{PostId: postId, UserId: userId})
		rec.LikeCount++
	}
	if err := fdb.save(); err != nil {
		return false, 0, err
	}
	return !hasLike, rec.LikeCount, nil
}

func (fdb *FileDB) CreateComment(ctx context.Context, req *appDb.CreateComment) (string, error) {
	fdb.mu.Lock()
	defer fdb.mu.Unlock()
	rec := fdb.findPost(req.PostId)
	if rec == nil {
		return "", nil
	}
	comment := &commentRec{
		Id:        uuid.NewString(),
		PostId:    req.PostId,
		AuthorId:  req.AuthorId,
		Text:      req.Text,
		CreatedAt: time.Now(),
	}
	fdb.data.Comments = append(fdb.data.Comments, comment)
	rec.CommentCount++
	if err := fdb.save(); err != nil {
		return "", err
	}
	return comment.Id, nil
}

func (fdb *FileDB) GetComments(ctx context.Context, postId string) ([]*model.Comment, error) {
	fdb.mu.RLock()
	defer fdb.mu.RUnlock()
	var comments []*model.Comment
	for _, rec := range fdb.data.Comments {
		if rec.PostId != postId {
			continue
		}
		comments = append(comments, &model.Comment{
			Id:        rec.Id,
			PostId:    rec.PostId,
			Author:    fdb.authorOf(rec.AuthorId),
			Text:      rec.Text,
			CreatedAt: rec.CreatedAt,
		})
	}
	sort.Slice(comments, func(i, j int) bool {
		return comments[i].CreatedAt.Before(comments[j].CreatedAt)
	})
	return comments, nil
}
