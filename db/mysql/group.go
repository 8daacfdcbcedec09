package mysql

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/onemsu/onemsu-be/model"
	"github.com/upper/db/v4"
)

type GroupDB struct {
	sess db.Session
}

func getGroupDB(sess db.Session) *GroupDB {
	return &GroupDB{sess}
}

func (gdb *GroupDB) CreateGroup(ctx context.Context, req *appDb.CreateGroup) (string, error) {
	groupId := uuid.NewString()
	_, err := gdb.sess.SQL().
		InsertInto("social_group").
		Columns("id", "name", "campus", "description").
		Values(groupId, req.Name, req.Campus, req.Description).
		ExecContext(ctx)
	if err != nil {
		return "", err
	}
	return groupId, nil
}

// GetGroupsByIds gets groups. nil ids gets all groups
func (gdb *GroupDB) GetGroupsByIds(ctx context.Context, ids []string, opts *appDb.GetGroupsQueryOpts) ([]*model.GroupWithMembership, error) {
	var where []interface{}
	if ids != nil {
		where = []interface{}{"g.id in ?", ids}
	}
	var groups []*model.GroupWithMembership
	if err := gdb.sess.SQL().
		Select("g.id", "g.name", "g.campus", "g.description", "g.member_count", "g.created_at",
			db.Raw("m.user_id IS NOT NULL AS is_member")).
		From("social_group as g").
		// TODO: Change to only join if user id is provided
		LeftJoin("membership as m").On("g.id = m.group_id AND m.user_id = ?", opts.ForUserId).
		Where(where...).
		OrderBy("g.name").
		IteratorContext(ctx).
		All(&groups); err != nil {
		return nil, err
	}
	return groups, nil
}

func (gdb *GroupDB) ToggleMembership(ctx context.Context, groupId, userId string) (bool, int, error) {
	var member bool
	var memberCount int
	err := gdb.sess.TxContext(ctx, func(sess db.Session) error {
		row, err := sess.SQL().QueryRowContext(ctx, `SELECT 1 FROM membership
																WHERE group_id = ? AND user_id = ?
															FOR UPDATE`,
			groupId, userId)
		if err != nil {
			return err
		}
		var exists int
		hasMembership := true
		if err := row.Scan(&exists); err != nil {
			if err != sql.ErrNoRows && err != db.ErrNoMoreRows {
				return err
			}
			hasMembership = false
		}

		delta := 1
		if hasMembership {
			if _, err := sess.SQL().
				DeleteFrom("membership").
				Where("group_id = ? AND user_id = ?", groupId, userId).
				ExecContext(ctx); err != nil {
				return err
			}
			delta = -1
		} else {
			if _, err := sess.SQL().
				InsertInto("membership").
				Columns("group_id", "user_id").
				Values(groupId, userId).
				ExecContext(ctx); err != nil {
				return err
			}
		}
		member = !hasMembership

		if _, err := sess.SQL().
			Update("social_group").
			Set(db.Raw("member_count = member_count + ?", delta)).
			Where("id = ?", groupId).
			ExecContext(ctx); err != nil {
			return err
		}
		countRow, err := sess.SQL().QueryRowContext(ctx,
			`SELECT member_count FROM social_group WHERE id = ?`, groupId)
		if err != nil {
			return err
		}
		return countRow.Scan(&memberCount)
	}, &sql.TxOptions{Isolation: sql.LevelReadCommitted})
	return member, memberCount, err
}

func (gdb *GroupDB) GetMembershipGroupIds(ctx context.Context, userId string) ([]string, error) {
	rows, err := gdb.sess.SQL().
		Select("group_id").
		From("membership").
		Where("user_id = ?", userId).
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
