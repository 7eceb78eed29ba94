package rpc

import (
	"context"
	"math/big"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
	"github/chapool/go-safe/internal/safe/contract"
)

const defaultTimeout = 10 * time.Second

// Client 封装以太坊 RPC 客户端，支持多个 URL 和故障转移。
// 实现 contract.Reader 与 contract.ChainIDReader。
type Client struct {
	urls    []string
	clients []*ethclient.Client
	mu      sync.RWMutex
	current int // 当前使用的客户端索引

	timeout    time.Duration
	registerer prometheus.Registerer
	metrics    *metrics
}

// Option 配置 Client
type Option func(*Client)

// WithTimeout 设置单次调用的超时时间
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// WithRegisterer 注册 prometheus 指标
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(c *Client) {
		c.registerer = reg
	}
}

// NewClient 创建新的 RPC 客户端
func NewClient(ctx context.Context, urls []string, opts ...Option) (*Client, error) {
	if len(urls) == 0 {
		return nil, errors.New("at least one RPC URL is required")
	}

	c := &Client{
		urls:    urls,
		clients: make([]*ethclient.Client, len(urls)),
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}

	m, err := newMetrics(c.registerer)
	if err != nil {
		return nil, err
	}
	c.metrics = m

	connected := 0
	for i, url := range urls {
		client, err := ethclient.DialContext(ctx, url)
		if err != nil {
			log.Warn().
				Str("url", url).
				Err(err).
				Msg("Failed to connect to RPC node, will retry on use")
			// 继续尝试其他 URL，不立即失败
			continue
		}
		c.clients[i] = client
		connected++
	}

	if connected == 0 {
		return nil, errors.Wrap(contract.ErrConnectionFailed, "failed to connect to any RPC node")
	}

	return c, nil
}

// Close 关闭所有客户端连接
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, client := range c.clients {
		if client != nil {
			client.Close()
		}
	}
}

// Read 执行只读合约调用 (eth_call)
func (c *Client) Read(ctx context.Context, target common.Address, sel contract.Selector, args []byte) ([]byte, error) {
	data := make([]byte, 0, len(sel)+len(args))
	data = append(data, sel[:]...)
	data = append(data, args...)

	msg := ethereum.CallMsg{
		To:   &target,
		Data: data,
	}

	started := time.Now()

	var out []byte
	err := c.do(ctx, func(ctx context.Context, client *ethclient.Client) error {
		var callErr error
		out, callErr = client.CallContract(ctx, msg, nil)
		return callErr
	})

	c.metrics.observe(sel, started, err)
	if err != nil {
		return nil, errors.Wrapf(err, "eth_call %s on %s", sel, target.Hex())
	}

	return out, nil
}

// ChainID 获取链 ID
func (c *Client) ChainID(ctx context.Context) (*big.Int, error) {
	var chainID *big.Int
	err := c.do(ctx, func(ctx context.Context, client *ethclient.Client) error {
		var callErr error
		chainID, callErr = client.ChainID(ctx)
		return callErr
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to get chain ID")
	}

	return chainID, nil
}

// do 在当前客户端上执行 fn；连接失败时切换到下一个节点。
// 超时、revert 和解码错误不会触发切换。
func (c *Client) do(ctx context.Context, fn func(ctx context.Context, client *ethclient.Client) error) error {
	var lastErr error

	for attempt := 0; attempt < len(c.urls); attempt++ {
		idx, client, err := c.clientAt(ctx, attempt)
		if err != nil {
			lastErr = err
			continue
		}

		callCtx, cancel := context.WithTimeout(ctx, c.timeout)
		err = classify(callCtx, fn(callCtx, client))
		cancel()

		if err == nil {
			c.setCurrent(idx)
			return nil
		}
		if !errors.Is(err, contract.ErrConnectionFailed) || ctx.Err() != nil {
			return err
		}

		log.Warn().
			Str("url", c.urls[idx]).
			Err(err).
			Msg("RPC call failed, trying next node")
		lastErr = err
	}

	if lastErr == nil {
		lastErr = errors.Wrap(contract.ErrConnectionFailed, "all RPC clients are unavailable")
	}
	return lastErr
}

// clientAt 返回从当前索引偏移 attempt 的客户端，必要时重新连接
func (c *Client) clientAt(ctx context.Context, attempt int) (int, *ethclient.Client, error) {
	c.mu.RLock()
	idx := (c.current + attempt) % len(c.clients)
	client := c.clients[idx]
	c.mu.RUnlock()

	if client != nil {
		return idx, client, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.clients[idx] != nil {
		return idx, c.clients[idx], nil
	}

	client, err := ethclient.DialContext(ctx, c.urls[idx])
	if err != nil {
		return idx, nil, classify(ctx, err)
	}
	c.clients[idx] = client

	return idx, client, nil
}

func (c *Client) setCurrent(idx int) {
	c.mu.Lock()
	c.current = idx
	c.mu.Unlock()
}
