package dynamo

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"

	"giftlist-tools/core/environment"
	"giftlist-tools/core/store"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials/stscreds"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/dynamodb"
	"github.com/aws/aws-sdk-go/service/dynamodb/dynamodbiface"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// Config holds the session defaults used when an environment does not override them.
type Config struct {
	Region   string
	Endpoint string
	Timeout  time.Duration
	// Limiter throttles every table handle handed out. Nil disables throttling.
	Limiter *rate.Limiter
}

// ClientFactory builds a DynamoDB client for a resolved request.
type ClientFactory func(ctx context.Context, req environment.Request) (dynamodbiface.DynamoDBAPI, error)

// Opener opens DynamoDB tables and keeps one client per (region, endpoint, role) for
// the life of the process.
type Opener struct {
	factory ClientFactory
	limiter *rate.Limiter
	logger  *zap.Logger

	mu      sync.RWMutex
	clients map[string]dynamodbiface.DynamoDBAPI
	group   singleflight.Group
}

var _ environment.Opener = (*Opener)(nil)

// NewOpener creates an opener that builds real AWS sessions.
func NewOpener(cfg Config, logger *zap.Logger) *Opener {
	return NewOpenerWithFactory(SessionFactory(cfg), cfg.Limiter, logger)
}

// NewOpenerWithFactory creates an opener around a custom client factory.
func NewOpenerWithFactory(factory ClientFactory, limiter *rate.Limiter, logger *zap.Logger) *Opener {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Opener{
		factory: factory,
		limiter: limiter,
		logger:  logger,
		clients: make(map[string]dynamodbiface.DynamoDBAPI),
	}
}

// Open returns a handle on req.Table, building the client on first use.
func (o *Opener) Open(ctx context.Context, req environment.Request) (store.Store, error) {
	key := clientKey(req)

	o.mu.RLock()
	client, ok := o.clients[key]
	o.mu.RUnlock()

	if !ok {
		v, err, _ := o.group.Do(key, func() (interface{}, error) {
			o.mu.RLock()
			if c, ok := o.clients[key]; ok {
				o.mu.RUnlock()
				return c, nil
			}
			o.mu.RUnlock()

			o.logger.Info("Creating DynamoDB client",
				zap.String("environment", req.Environment.Name),
				zap.String("strategy", string(req.Strategy)),
				zap.String("role", req.RoleARN),
			)

			c, err := o.factory(ctx, req)
			if err != nil {
				return nil, err
			}

			o.mu.Lock()
			o.clients[key] = c
			o.mu.Unlock()
			return c, nil
		})
		if err != nil {
			return nil, err
		}
		client = v.(dynamodbiface.DynamoDBAPI)
	}

	return store.RateLimited(NewTable(client, req.Table, req.Schema), o.limiter), nil
}

func clientKey(req environment.Request) string {
	return fmt.Sprintf("%s|%s|%s|%s", req.Strategy, req.RoleARN, req.Environment.Region, req.Environment.Endpoint)
}

// SessionFactory builds clients from AWS sessions. For AssumeRole requests the
// temporary credentials are fetched before the client is returned, so an unassumable
// role fails here instead of on the first read.
func SessionFactory(cfg Config) ClientFactory {
	return func(ctx context.Context, req environment.Request) (dynamodbiface.DynamoDBAPI, error) {
		awsCfg := aws.NewConfig()

		region := cfg.Region
		if req.Environment.Region != "" {
			region = req.Environment.Region
		}
		if region != "" {
			awsCfg = awsCfg.WithRegion(region)
		}

		endpoint := cfg.Endpoint
		if req.Environment.Endpoint != "" {
			endpoint = req.Environment.Endpoint
		}
		if endpoint != "" {
			awsCfg = awsCfg.WithEndpoint(endpoint)
		}

		if cfg.Timeout > 0 {
			awsCfg = awsCfg.WithHTTPClient(&http.Client{Timeout: cfg.Timeout})
		}

		sess, err := session.NewSession(awsCfg)
		if err != nil {
			return nil, fmt.Errorf("failed to create AWS session: %w", err)
		}

		if req.Strategy != environment.AssumeRole {
			return dynamodb.New(sess), nil
		}

		creds := stscreds.NewCredentials(sess, req.RoleARN, func(p *stscreds.AssumeRoleProvider) {
			p.RoleSessionName = "giftlist-tools-" + req.Environment.Name
		})
		if _, err := creds.GetWithContext(ctx); err != nil {
			return nil, fmt.Errorf("failed to assume role %s: %w", req.RoleARN, err)
		}

		return dynamodb.New(sess, aws.NewConfig().WithCredentials(creds)), nil
	}
}
