package dashboard

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/robolab/arm-rl-train/monitor"
)

// RedisPublisher mirrors the run status into Redis so that external
// monitors can follow several concurrent training runs. The status lives
// in a hash keyed by run id; episodes are published on a per-run channel.
type RedisPublisher struct {
	cli   *redis.Client
	runID string
}

func NewRedisPublisher(ctx context.Context, addr, runID string) (*RedisPublisher, error) {
	cli := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	if err := cli.Ping(ctx).Err(); err != nil {
		cli.Close()
		return nil, fmt.Errorf("connecting to redis at %s: %w", addr, err)
	}
	return &RedisPublisher{
		cli:   cli,
		runID: runID,
	}, nil
}

func (r *RedisPublisher) statusKey() string {
	return "armtrain:run:" + r.runID
}

func (r *RedisPublisher) PublishStatus(ctx context.Context, status Status) error {
	fields := map[string]interface{}{
		"algo":             status.Algo,
		"env_id":           status.EnvID,
		"srl_model":        status.SRLModel,
		"step":             status.Step,
		"episodes":         status.Episodes,
		"best_mean_reward": status.BestMeanReward,
		"last_mean_reward": status.LastMeanReward,
	}
	if err := r.cli.HSet(ctx, r.statusKey(), fields).Err(); err != nil {
		return err
	}
	bs, err := json.Marshal(status)
	if err != nil {
		return err
	}
	return r.cli.Publish(ctx, "armtrain:runs", bs).Err()
}

func (r *RedisPublisher) PublishEpisode(ctx context.Context, stat monitor.EpisodeStat) error {
	bs, err := json.Marshal(stat)
	if err != nil {
		return err
	}
	return r.cli.Publish(ctx, "armtrain:episodes:"+r.runID, bs).Err()
}

func (r *RedisPublisher) Close() error {
	return r.cli.Close()
}
