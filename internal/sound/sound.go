//go:build !ci

// Package sound 终端客户端的提示音
package sound

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/generators"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/gopxl/beep/v2/wav"
)

const sampleRate = beep.SampleRate(44100)

var standardFormat = beep.Format{
	SampleRate:  sampleRate,
	NumChannels: 2,
	Precision:   4,
}

// 内置提示音：频率（Hz）依次播放
var builtinTones = map[string][]float64{
	CueRound: {880},
	CueWin:   {523.25, 659.25, 783.99},
	CueError: {220},
}

const toneDuration = 90 * time.Millisecond

// Manager 提示音播放器。dir 中同名的 mp3/wav 文件会替换内置提示音。
type Manager struct {
	dir     string
	buffers map[string]*beep.Buffer
	enabled bool
}

func NewManager(dir string) *Manager {
	return &Manager{
		dir:     dir,
		buffers: make(map[string]*beep.Buffer),
	}
}

// Init 打开音频设备并加载提示音
func (m *Manager) Init() error {
	if err := m.load(); err != nil {
		return err
	}
	// 较小的缓冲以降低延迟
	if err := speaker.Init(sampleRate, sampleRate.N(time.Second/10)); err != nil {
		return fmt.Errorf("failed to initialize speaker: %w", err)
	}
	m.enabled = true
	return nil
}

// load 先读取目录中的音频文件，缺失的提示音使用内置音
func (m *Manager) load() error {
	if err := m.loadFiles(); err != nil {
		return err
	}
	for name, freqs := range builtinTones {
		if _, ok := m.buffers[name]; ok {
			continue
		}
		buf, err := synthesize(freqs)
		if err != nil {
			return fmt.Errorf("synthesize %s: %w", name, err)
		}
		m.buffers[name] = buf
	}
	return nil
}

func (m *Manager) loadFiles() error {
	if m.dir == "" {
		return nil
	}
	files, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to read sound directory: %w", err)
	}

	for _, file := range files {
		if file.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(file.Name()))
		if ext != ".mp3" && ext != ".wav" {
			continue
		}
		// 单个文件损坏不影响其他提示音
		_ = m.loadFile(file.Name(), ext)
	}
	return nil
}

func (m *Manager) loadFile(name, ext string) error {
	f, err := os.Open(filepath.Join(m.dir, filepath.Clean(name)))
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	var streamer beep.StreamSeekCloser
	var format beep.Format
	switch ext {
	case ".mp3":
		streamer, format, err = mp3.Decode(f)
	case ".wav":
		streamer, format, err = wav.Decode(f)
	}
	if err != nil {
		return err
	}
	defer func() { _ = streamer.Close() }()

	var resampled beep.Streamer = streamer
	if format.SampleRate != sampleRate {
		resampled = beep.Resample(4, format.SampleRate, sampleRate, streamer)
	}

	buffer := beep.NewBuffer(standardFormat)
	buffer.Append(resampled)
	m.buffers[strings.TrimSuffix(name, filepath.Ext(name))] = buffer
	return nil
}

// synthesize 生成依次播放的短音
func synthesize(freqs []float64) (*beep.Buffer, error) {
	buffer := beep.NewBuffer(standardFormat)
	for _, freq := range freqs {
		tone, err := generators.SineTone(sampleRate, freq)
		if err != nil {
			return nil, err
		}
		buffer.Append(&effects.Gain{
			Streamer: beep.Take(sampleRate.N(toneDuration), tone),
			Gain:     -0.8,
		})
	}
	return buffer, nil
}

// Play 播放提示音，未初始化或不存在时忽略
func (m *Manager) Play(name string) {
	if !m.enabled {
		return
	}
	buffer, ok := m.buffers[name]
	if !ok {
		return
	}
	speaker.Play(buffer.Streamer(0, buffer.Len()))
}

func (m *Manager) Close() {
	if m.enabled {
		speaker.Close()
	}
	m.enabled = false
}
