package mysql

import (
	"database/sql"
	"fmt"

	"github.com/onemsu/onemsu-be/config"
	appDb "github.com/onemsu/onemsu-be/db"
	"github.com/upper/db/v4"
	upperMysql "github.com/upper/db/v4/adapter/mysql"

	_ "github.com/go-sql-driver/mysql"
)

type MySQLDB struct {
	*UserDB
	*SessionDB
	*PostDB
	*FollowDB
	*ThreadDB
	*NotificationDB
	*GroupDB
	sess  db.Session
	sqlDB *sql.DB
}

func GetDatabase(cfg *config.DBConfig) (appDb.Database, error) {
	sqlDB, err := sql.Open("mysql",
		fmt.Sprintf("%s:%s@tcp(%s)/%s?tls=true&parseTime=true",
			cfg.User, cfg.Pass, cfg.Host, cfg.Name))
	if err != nil {
		return nil, err
	}

	sqlDB.SetMaxIdleConns(50)
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetConnMaxIdleTime(0)

	sess, err := upperMysql.New(sqlDB)
	if err != nil {
		return nil, err
	}

	return &MySQLDB{
		UserDB:         getUserDB(sess),
		SessionDB:      getSessionDB(sess),
		PostDB:         getPostDB(sess),
		FollowDB:       getFollowDB(sess),
		ThreadDB:       getThreadDB(sess),
		NotificationDB: getNotificationDB(sess),
		GroupDB:        getGroupDB(sess),
		sess:           sess,
		sqlDB:          sqlDB,
	}, nil
}

func (mdb *MySQLDB) GetSQLDB() *sql.DB {
	return mdb.sqlDB
}

func (mdb *MySQLDB) Close() error {
	return mdb.sess.Close()
}
