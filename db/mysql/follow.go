package mysql

import (
	"context"
	"database/sql"

	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
	"github.com/upper/db/v4"
)

type FollowDB struct {
	sess db.Session
}

func getFollowDB(sess db.Session) *FollowDB {
	return &FollowDB{sess}
}

// ToggleFollow flips the edge and keeps both denormalized counters in step
// inside a single transaction, so a partial failure can never leave the graph
// inconsistent.
func (fdb *FollowDB) ToggleFollow(ctx context.Context, followerId, followeeId string) (*appDb.FollowResult, error) {
	var result appDb.FollowResult
	err := fdb.sess.TxContext(ctx, func(sess db.Session) error {
		row, err := sess.SQL().QueryRowContext(ctx, `SELECT 1 FROM follow
																WHERE follower_id = ? AND followee_id = ?
															FOR UPDATE`,
			followerId, followeeId)
		if err != nil {
			return err
		}
		var exists int
		hasEdge := true
		if err := row.Scan(&exists); err != nil {
			if err != sql.ErrNoRows && err != db.ErrNoMoreRows {
				return err
			}
			hasEdge = false
		}

		delta := 1
		if hasEdge {
			if _, err := sess.SQL().
				DeleteFrom("follow").
				Where("follower_id = ? AND followee_id = ?", followerId, followeeId).
				ExecContext(ctx); err != nil {
				return err
			}
			delta = -1
		} else {
			if _, err := sess.SQL().
				InsertInto("follow").
				Columns("follower_id", "followee_id").
				Values(followerId, followeeId).
				ExecContext(ctx); err != nil {
				return err
			}
		}
		result.Following = !hasEdge

		if err := adjustFollowCounters(ctx, sess, followerId, followeeId, delta); err != nil {
			return err
		}

		followeeRow, err := sess.SQL().QueryRowContext(ctx,
			`SELECT follower_count FROM person WHERE id = ?`, followeeId)
		if err != nil {
			return err
		}
		if err := followeeRow.Scan(&result.FollowerCount); err != nil {
			return err
		}
		followerRow, err := sess.SQL().QueryRowContext(ctx,
			`SELECT following_count FROM person WHERE id = ?`, followerId)
		if err != nil {
			return err
		}
		return followerRow.Scan(&result.FollowingCount)
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

func adjustFollowCounters(ctx context.Context, sess db.Session, followerId, followeeId string, delta int) error {
	if _, err := sess.SQL().
		Update("person").
		Set(db.Raw("following_count = following_count + ?", delta)).
		Where("id = ?", followerId).
		ExecContext(ctx); err != nil {
		return err
	}
	_, err := sess.SQL().
		Update("person").
		Set(db.Raw("follower_count = follower_count + ?", delta)).
		Where("id = ?", followeeId).
		ExecContext(ctx)
	return err
}

// ToggleBlock flips the block edge. Creating a block severs any follow edges
// between the pair (both directions) in the same transaction, counters
// included.
func (fdb *FollowDB) ToggleBlock(ctx context.Context, blockerId, blockedId string) (bool, error) {
	var blocked bool
	err := fdb.sess.TxContext(ctx, func(sess db.Session) error {
		row, err := sess.SQL().QueryRowContext(ctx, `SELECT 1 FROM block
																WHERE blocker_id = ? AND blocked_id = ?
															FOR UPDATE`,
			blockerId, blockedId)
		if err != nil {
			return err
		}
		var exists int
		hasEdge := true
		if err := row.Scan(&exists); err != nil {
			if err != sql.ErrNoRows && err != db.ErrNoMoreRows {
				return err
			}
			hasEdge = false
		}

		if hasEdge {
			_, err := sess.SQL().
				DeleteFrom("block").
				Where("blocker_id = ? AND blocked_id = ?", blockerId, blockedId).
				ExecContext(ctx)
			blocked = false
			return err
		}

		if _, err := sess.SQL().
			InsertInto("block").
			Columns("blocker_id", "blocked_id").
			Values(blockerId, blockedId).
			ExecContext(ctx); err != nil {
			return err
		}
		blocked = true

		for _, pair := range [][2]string{{blockerId, blockedId}, {blockedId, blockerId}} {
			res, err := sess.SQL().
				DeleteFrom("follow").
				Where("follower_id = ? AND followee_id = ?", pair[0], pair[1]).
				ExecContext(ctx)
			if err != nil {
				return err
			}
			removed, err := res.RowsAffected()
			if err != nil {
				return err
			}
			if removed > 0 {
				if err := adjustFollowCounters(ctx, sess, pair[0], pair[1], -1); err != nil {
					return err
				}
			}
		}
		return nil
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	return blocked, err
}

func (fdb *FollowDB) GetFollowers(ctx context.Context, userId string) ([]*model.Author, error) {
	return fdb.getEdgeAuthors(ctx, "f.follower_id", "f.followee_id = ?", userId)
}

func (fdb *FollowDB) GetFollowing(ctx context.Context, userId string) ([]*model.Author, error) {
	return fdb.getEdgeAuthors(ctx, "f.followee_id", "f.follower_id = ?", userId)
}

func (fdb *FollowDB) getEdgeAuthors(ctx context.Context, joinCol, cond, userId string) ([]*model.Author, error) {
	var authors []*model.Author
	return authors, fdb.sess.SQL().
		Select("person.id as author_id", "person.display_name", "person.username", "person.avatar_url").
		From("follow as f").
		Join("person").On(joinCol + " = person.id").
		Where(cond, userId).
		OrderBy("f.created_at DESC").
		IteratorContext(ctx).
		All(&authors)
}

func (fdb *FollowDB) GetFollowingIds(ctx context.Context, userId string) ([]string, error) {
	return fdb.getIds(ctx, "follow", "followee_id", "follower_id = ?", userId)
}

func (fdb *FollowDB) GetBlockedIds(ctx context.Context, userId string) ([]string, error) {
	return fdb.getIds(ctx, "block", "blocked_id", "blocker_id = ?", userId)
}

func (fdb *FollowDB) getIds(ctx context.Context, table, col, cond, userId string) ([]string, error) {
	rows, err := fdb.sess.SQL().
		Select(col).
		From(table).
		Where(cond, userId).
		QueryContext(ctx)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
