// Package apiclient 终端客户端使用的 REST 客户端
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/palemoky/point-calculator/internal/apperrors"
	"github.com/palemoky/point-calculator/internal/game/rule"
	"github.com/palemoky/point-calculator/internal/game/session"
	"github.com/palemoky/point-calculator/internal/server/storage"
)

const apiPrefix = "/api/v1"

// Client REST 客户端
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// New 创建客户端，baseURL 形如 http://localhost:1780
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

// WithHTTPClient 替换底层 http.Client
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.http = hc
	return c
}

// --- 对局 ---

// ListGames 列出历史对局
func (c *Client) ListGames(ctx context.Context, limit int) ([]storage.SavedGame, error) {
	path := "/games/"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var games []storage.SavedGame
	err := c.do(ctx, http.MethodGet, path, nil, &games)
	return games, err
}

// GetGame 获取对局
func (c *Client) GetGame(ctx context.Context, id string) (*storage.SavedGame, error) {
	var g storage.SavedGame
	if err := c.do(ctx, http.MethodGet, "/games/"+url.PathEscape(id), nil, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// CreateGame 以快照新建对局
func (c *Client) CreateGame(ctx context.Context, name string, snap session.Snapshot) (*storage.SavedGame, error) {
	body := map[string]any{"name": name, "gameState": snap}
	var g storage.SavedGame
	if err := c.do(ctx, http.MethodPost, "/games/", body, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// UpdateGame 用快照更新对局
func (c *Client) UpdateGame(ctx context.Context, id string, snap session.Snapshot) (*storage.SavedGame, error) {
	var g storage.SavedGame
	if err := c.do(ctx, http.MethodPut, "/games/"+url.PathEscape(id), snap, &g); err != nil {
		return nil, err
	}
	return &g, nil
}

// DeleteGame 删除对局
func (c *Client) DeleteGame(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/games/"+url.PathEscape(id), nil, nil)
}

// --- 规则预设 ---

// ListRules 列出规则预设
func (c *Client) ListRules(ctx context.Context) ([]storage.StoredRule, error) {
	var rules []storage.StoredRule
	err := c.do(ctx, http.MethodGet, "/rules", nil, &rules)
	return rules, err
}

// CreateRule 新建规则预设
func (c *Client) CreateRule(ctx context.Context, name string, cfg rule.Config) (*storage.StoredRule, error) {
	body := map[string]any{"name": name, "config": cfg}
	var r storage.StoredRule
	if err := c.do(ctx, http.MethodPost, "/rules", body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// DeleteRule 删除规则预设
func (c *Client) DeleteRule(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/rules/"+url.PathEscape(id), nil, nil)
}

// ClearData 清除当前用户的全部数据
func (c *Client) ClearData(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, "/me/data", nil, nil)
}

// Leaderboard 胜场排行榜
func (c *Client) Leaderboard(ctx context.Context, limit int) ([]storage.LeaderboardEntry, error) {
	var entries []storage.LeaderboardEntry
	err := c.do(ctx, http.MethodGet, "/leaderboard?limit="+strconv.Itoa(limit), nil, &entries)
	return entries, err
}

// do 发送请求。非 2xx 响应解析为 *apperrors.GameError。
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("编码请求失败: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiPrefix+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= http.StatusBadRequest {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("解析响应失败: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	var body struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil || body.Code == 0 {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return &apperrors.GameError{Code: body.Code, Message: body.Message}
}
