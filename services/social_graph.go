package services

import (
	"context"
	"log"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/onemsu/onemsu-be/config"
)

// SocialGraph mirrors the follow graph into Neo4j. The relational store stays
// authoritative; writes here are best-effort and failures only log, so a graph
// outage never breaks a follow.
type SocialGraph struct {
	driver neo4j.DriverWithContext
	dbName string
}

func NewSocialGraph(ctx context.Context, cfg *config.Neo4jConfig) (*SocialGraph, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.User, cfg.Pass, ""))
	if err != nil {
		return nil, err
	}
	graph := &SocialGraph{driver: driver, dbName: cfg.DBName}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, err
	}
	return graph, nil
}

func (sg *SocialGraph) Close(ctx context.Context) error {
	return sg.driver.Close(ctx)
}

func (sg *SocialGraph) run(ctx context.Context, query string, params map[string]interface{}) (*neo4j.EagerResult, error) {
	return neo4j.ExecuteQuery(ctx, sg.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(sg.dbName))
}

// RecordFollow upserts or removes the FOLLOWS edge to match the store.
func (sg *SocialGraph) RecordFollow(ctx context.Context, followerId, followeeId string, following bool) {
	params := map[string]interface{}{
		"follower": followerId,
		"followee": followeeId,
	}
	query := `MERGE (a:User {id: $follower})
MERGE (b:User {id: $followee})
MERGE (a)-[:FOLLOWS]->(b)`
	if !following {
		query = `MATCH (a:User {id: $follower})-[f:FOLLOWS]->(b:User {id: $followee}) DELETE f`
	}
	if _, err := sg.run(ctx, query, params); err != nil {
		log.Println("an error occurred while mirroring a follow edge", err)
	}
}

// SuggestionsFor returns ids of users followed by people the user follows,
// excluding users already followed.
func (sg *SocialGraph) SuggestionsFor(ctx context.Context, userId string, limit int) ([]string, error) {
	result, err := sg.run(ctx, `MATCH (me:User {id: $id})-[:FOLLOWS]->(:User)-[:FOLLOWS]->(suggested:User)
WHERE suggested.id <> $id AND NOT (me)-[:FOLLOWS]->(suggested)
RETURN DISTINCT suggested.id AS id
LIMIT $limit`,
		map[string]interface{}{
			"id":    userId,
			"limit": limit,
		})
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(result.Records))
	for _, record := range result.Records {
		raw, found := record.Get("id")
		if !found {
			continue
		}
		if id, ok := raw.(string); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}
