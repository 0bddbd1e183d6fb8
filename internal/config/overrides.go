package config

import (
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// CreatorOverride 指定用户名的广告统计凭证覆盖项
type CreatorOverride struct {
	Username    string `toml:"username"`
	APIKey      string `toml:"api_key"`
	PlacementID string `toml:"placement_id"`
	Reason      string `toml:"reason"`
}

// CreatorOverrides 覆盖表，键为小写用户名
type CreatorOverrides map[string]CreatorOverride

type overridesFile struct {
	Override []CreatorOverride `toml:"override"`
}

// LoadCreatorOverrides 从 TOML 文件加载覆盖表，路径为空时返回空表
func LoadCreatorOverrides(path string) (CreatorOverrides, error) {
	if path == "" {
		return CreatorOverrides{}, nil
	}

	var f overridesFile
	if _, err := toml.DecodeFile(path, &f); err != nil {
		return nil, errors.Wrapf(err, "failed to decode toml file with path: %s", path)
	}
	return NewCreatorOverrides(f.Override)
}

// NewCreatorOverrides 校验并建立覆盖表
func NewCreatorOverrides(entries []CreatorOverride) (CreatorOverrides, error) {
	out := make(CreatorOverrides, len(entries))
	for i, e := range entries {
		key := strings.ToLower(strings.TrimSpace(e.Username))
		if key == "" {
			return nil, errors.Errorf("override #%d: username is not set", i+1)
		}
		if strings.TrimSpace(e.APIKey) == "" {
			return nil, errors.Errorf("override %s: api_key is not set", e.Username)
		}
		if _, dup := out[key]; dup {
			return nil, errors.Errorf("override %s: duplicate username", e.Username)
		}
		e.Username = strings.TrimSpace(e.Username)
		out[key] = e
	}
	return out, nil
}

// Lookup 按用户名（不区分大小写）查找覆盖项
func (o CreatorOverrides) Lookup(username string) (CreatorOverride, bool) {
	e, ok := o[strings.ToLower(strings.TrimSpace(username))]
	return e, ok
}
