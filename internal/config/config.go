package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/awissink/latedays/internal/calculator"
	"github.com/awissink/latedays/internal/parser"
)

// DefaultConfigName 默认配置文件名
const DefaultConfigName = "config.toml"

// AppConfig 应用配置
type AppConfig struct {
	Course    CourseConfig    `toml:"course"`
	Files     FilesConfig     `toml:"files"`
	Columns   ColumnsConfig   `toml:"columns"`
	Overrides OverridesConfig `toml:"overrides"`
	History   HistoryConfig   `toml:"history"`
}

// CourseConfig 截止时间与迟交口径
type CourseConfig struct {
	Deadline           string `toml:"deadline" validate:"required"` // 截止时间（deadline_timezone 下的墙上时间）
	DeadlineTimezone   string `toml:"deadline_timezone" validate:"required"`
	SubmissionTimezone string `toml:"submission_timezone" validate:"required"` // Codio 导出时间戳的时区
	GracePeriodHours   int    `toml:"grace_period_hours" validate:"gte=0"`
	ExceedThreshold    int    `toml:"exceed_threshold" validate:"gte=0"`
}

// FilesConfig 输入输出文件（相对路径按 data_dir 解析）
type FilesConfig struct {
	DataDir     string `toml:"data_dir"`
	Roster      string `toml:"roster" validate:"required"`
	Written     string `toml:"written" validate:"required"`
	Programming string `toml:"programming" validate:"required"`
	Ledger      string `toml:"ledger" validate:"required"`
	LedgerXLSX  string `toml:"ledger_xlsx"`
	Import      string `toml:"import" validate:"required"`
}

// ColumnsConfig 各导出文件的列名
type ColumnsConfig struct {
	Roster      RosterColumns      `toml:"roster"`
	Written     WrittenColumns     `toml:"written"`
	Programming ProgrammingColumns `toml:"programming"`
}

// RosterColumns Courseworks 列名
type RosterColumns struct {
	ID       string `toml:"id" validate:"required"`
	Name     string `toml:"name" validate:"required"`
	LateDays string `toml:"late_days" validate:"required"`
}

// WrittenColumns Gradescope 列名
type WrittenColumns struct {
	ID       string `toml:"id" validate:"required"`
	Lateness string `toml:"lateness" validate:"required"`
	Status   string `toml:"status" validate:"required"`
}

// ProgrammingColumns Codio 列名
type ProgrammingColumns struct {
	NameToken  string `toml:"name_token" validate:"required"`
	Email      string `toml:"email" validate:"required"`
	SubmitTime string `toml:"submit_time" validate:"required"`
	Status     string `toml:"status" validate:"required"`
}

// HistoryConfig 运行记录（SQLite）
type HistoryConfig struct {
	Enabled bool   `toml:"enabled"`
	DBPath  string `toml:"db_path" validate:"required_if=Enabled true"`
}

// LoadConfigInfo 配置加载元信息
type LoadConfigInfo struct {
	Path  string
	Found bool
}

// DefaultConfig 默认配置
func DefaultConfig() *AppConfig {
	return &AppConfig{
		Course: CourseConfig{
			Deadline:           "2023-02-20-23:59:59",
			DeadlineTimezone:   "America/New_York",
			SubmissionTimezone: "UTC",
			GracePeriodHours:   1,
			ExceedThreshold:    3,
		},
		Files: FilesConfig{
			DataDir:     ".",
			Roster:      "courseworks.csv",
			Written:     "gradescope.csv",
			Programming: "codio.csv",
			Ledger:      "final_late_days.csv",
			Import:      "courseworks_import.csv",
		},
		Columns: ColumnsConfig{
			Roster: RosterColumns{
				ID:       "SIS User ID",
				Name:     "Student",
				LateDays: "Late Days Remaining (1021574)",
			},
			Written: WrittenColumns{
				ID:       "SID",
				Lateness: "Lateness (H:M:S)",
				Status:   "Status",
			},
			Programming: ProgrammingColumns{
				NameToken:  "first name",
				Email:      "email",
				SubmitTime: "completed date",
				Status:     "completed",
			},
		},
		Overrides: OverridesConfig{
			Written:     map[string]int{},
			Programming: map[string]int{},
		},
		History: HistoryConfig{
			Enabled: false,
			DBPath:  "latedays.db",
		},
	}
}

// GetExeDir 获取可执行文件所在目录
func GetExeDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", err
	}
	return filepath.Dir(exe), nil
}

// findConfig 未指定路径时依次查找当前目录与可执行文件目录
func findConfig() string {
	candidates := []string{DefaultConfigName}
	if exeDir, err := GetExeDir(); err == nil {
		candidates = append(candidates, filepath.Join(exeDir, DefaultConfigName))
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return DefaultConfigName
}

// LoadConfigWithInfo 加载 config.toml（不存在时使用默认配置），再应用 .env 与环境变量
func LoadConfigWithInfo(path string) (*AppConfig, LoadConfigInfo, error) {
	if path == "" {
		path = findConfig()
	}
	info := LoadConfigInfo{Path: path}
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		info.Found = true
		if err := toml.Unmarshal(data, config); err != nil {
			return nil, info, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// 配置文件不存在，使用默认配置
	default:
		return nil, info, err
	}

	if config.Overrides.File != "" {
		file, err := LoadOverrides(config.ResolvePath(config.Overrides.File))
		if err != nil {
			return nil, info, err
		}
		config.Overrides = config.Overrides.Merge(file)
	}

	// .env 可选
	_ = godotenv.Load()
	if err := applyEnv(config); err != nil {
		return nil, info, err
	}

	return config, info, nil
}

// LoadConfig 加载配置
func LoadConfig(path string) (*AppConfig, error) {
	config, _, err := LoadConfigWithInfo(path)
	return config, err
}

// SaveConfig 保存配置到 path
func SaveConfig(config *AppConfig, path string) error {
	data, err := toml.Marshal(config)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// 环境变量覆盖（用于临时调整截止时间等）
func applyEnv(config *AppConfig) error {
	if v := os.Getenv("LATEDAYS_DEADLINE"); v != "" {
		config.Course.Deadline = v
	}
	if v := os.Getenv("LATEDAYS_GRACE_HOURS"); v != "" {
		hours, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LATEDAYS_GRACE_HOURS=%q: %w", v, err)
		}
		config.Course.GracePeriodHours = hours
	}
	if v := os.Getenv("LATEDAYS_DATA_DIR"); v != "" {
		config.Files.DataDir = v
	}
	return nil
}

var validate = validator.New()

// Validate 校验配置：结构字段 + 截止时间/时区可解析
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if _, err := c.Policy(); err != nil {
		return err
	}
	if _, err := c.SubmissionLocation(); err != nil {
		return err
	}
	for category, m := range map[string]map[string]int{
		"written":     c.Overrides.Written,
		"programming": c.Overrides.Programming,
	} {
		for id, v := range m {
			if v < 0 {
				return fmt.Errorf("invalid config: %s override for %q is negative", category, id)
			}
		}
	}
	return nil
}

// Policy 由配置构造计算口径
func (c *AppConfig) Policy() (*calculator.Policy, error) {
	loc, err := time.LoadLocation(c.Course.DeadlineTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid deadline_timezone %q: %w", c.Course.DeadlineTimezone, err)
	}
	return calculator.NewPolicy(c.Course.Deadline, loc, c.Course.GracePeriodHours)
}

// SubmissionLocation Codio 时间戳所在时区
func (c *AppConfig) SubmissionLocation() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Course.SubmissionTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid submission_timezone %q: %w", c.Course.SubmissionTimezone, err)
	}
	return loc, nil
}

// ResolvePath 相对路径按 data_dir 解析
func (c *AppConfig) ResolvePath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	dir := c.Files.DataDir
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, p)
}

// RosterMapping 花名册列映射
func (c *AppConfig) RosterMapping() []parser.FieldMapping {
	r := c.Columns.Roster
	return parser.RosterMapping(r.ID, r.Name, r.LateDays)
}

// WrittenMapping Gradescope 列映射
func (c *AppConfig) WrittenMapping() []parser.FieldMapping {
	w := c.Columns.Written
	return parser.WrittenMapping(w.ID, w.Lateness, w.Status)
}

// ProgrammingMapping Codio 列映射
func (c *AppConfig) ProgrammingMapping() []parser.FieldMapping {
	p := c.Columns.Programming
	return parser.ProgrammingMapping(p.NameToken, p.Email, p.SubmitTime, p.Status)
}
