package tsv

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/big"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/wildmap/bitmagic"
	"github.com/wildmap/bitmagic/xlog"
)

/* tsv声明文件格式
第1行表头, 字段名, 必须包含 key 与 value 两列
第2行, 字段中文名
第3行, 字段注释
第4行开始, 数据行

key 列:
	0          单个位
	[1,2,3]    位置列表, 可嵌套
	4..6       闭区间, 4...7 为左闭右开
	default    其余视为选项名
value 列:
	字段行为字段名, 选项行按 JSON 解析, 解析失败时直接使用字符串
*/

const (
	keyColumn   = "key"
	valueColumn = "value"
	nullValue   = "null"
)

var rangePattern = regexp.MustCompile(`^\s*(-?\d+)\s*(\.\.\.?)\s*(-?\d+)\s*$`)

// LoadTable 读取 dir/name.tsv 并构造字段表
func LoadTable(dir, name string, opts ...bitmagic.TableOption) (*bitmagic.Table, error) {
	entries, err := LoadEntries(filepath.Join(dir, name+".tsv"))
	if err != nil {
		return nil, err
	}
	return bitmagic.NewTableWithOptions(name, entries, opts...)
}

// Declare 读取 dir/name.tsv 并注册到 reg
func Declare(reg *bitmagic.Registry, dir, name string) (*bitmagic.Table, error) {
	t, err := LoadTable(dir, name)
	if err != nil {
		return nil, err
	}
	reg.DeclareTable(t)
	xlog.Infow("bit field declaration loaded", "name", name, "fields", len(t.Fields()), "bits", t.DistinctBitCount())
	return t, nil
}

// LoadEntries 读取 tsv 声明文件
func LoadEntries(path string) ([]bitmagic.Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func(file *os.File) {
		_ = file.Close()
	}(file)

	entries, err := ParseEntries(file)
	if err != nil {
		return nil, fmt.Errorf("tsv %s: %w", filepath.Base(path), err)
	}
	return entries, nil
}

// ParseEntries 从 reader 解析声明条目，所有数据行的错误会合并返回
func ParseEntries(r io.Reader) ([]bitmagic.Entry, error) {
	scanner := bufio.NewScanner(r)
	var (
		rowindex int
		keyIdx   = -1
		valIdx   = -1
		entries  []bitmagic.Entry
		errs     error
	)

	for scanner.Scan() {
		rowindex++
		row := strings.Split(strings.TrimRight(scanner.Text(), "\r\n"), "\t")

		// 处理表头
		if rowindex == 1 {
			for idx, field := range row {
				switch strings.ToLower(strings.TrimSpace(field)) {
				case keyColumn:
					keyIdx = idx
				case valueColumn:
					valIdx = idx
				}
			}
			if keyIdx < 0 || valIdx < 0 {
				return nil, fmt.Errorf("invalid tsv header, %q and %q columns are required", keyColumn, valueColumn)
			}
			continue
		}
		if rowindex <= 3 {
			continue
		}
		if strings.TrimSpace(strings.Join(row, "")) == "" {
			continue
		}

		entry, err := parseRow(row, keyIdx, valIdx)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("parse row %d error %w", rowindex, err))
			continue
		}
		entries = append(entries, entry)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file error %w", err)
	}
	if rowindex == 0 {
		return nil, fmt.Errorf("invalid tsv, missing header")
	}
	if errs != nil {
		return nil, errs
	}
	return entries, nil
}

func parseRow(row []string, keyIdx, valIdx int) (bitmagic.Entry, error) {
	for i := len(row); i <= max(keyIdx, valIdx); i++ {
		row = append(row, "NULL")
	}
	rawKey := strings.TrimSpace(row[keyIdx])
	rawVal := strings.TrimSpace(row[valIdx])
	if rawKey == "" || strings.ToLower(rawKey) == nullValue {
		return bitmagic.Entry{}, fmt.Errorf("missing key")
	}

	key, err := parseKey(rawKey)
	if err != nil {
		return bitmagic.Entry{}, err
	}
	return bitmagic.Entry{Key: key, Value: parseValue(rawVal)}, nil
}

// parseKey 区间语法优先, 其次按 JSON 解析, 都失败时作为选项名
func parseKey(str string) (any, error) {
	if m := rangePattern.FindStringSubmatch(str); m != nil {
		from, err := strconv.Atoi(m[1])
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", str, err)
		}
		to, err := strconv.Atoi(m[3])
		if err != nil {
			return nil, fmt.Errorf("range %q: %w", str, err)
		}
		return bitmagic.Range{From: from, To: to, Exclusive: m[2] == "..."}, nil
	}

	value, ok := decodeJSON(str)
	if !ok {
		return str, nil
	}
	return keyValue(value), nil
}

// keyValue 将 JSON 数字转换为 int, 数组递归转换
func keyValue(v any) any {
	switch val := v.(type) {
	case json.Number:
		if n, err := val.Int64(); err == nil && int64(int(n)) == n {
			return int(n)
		}
		if f, err := val.Float64(); err == nil {
			return f
		}
		return val.String()
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			out[i] = keyValue(item)
		}
		return out
	}
	return v
}

// parseValue NULL 为 nil, 整数解析为任意精度整数
func parseValue(str string) any {
	if str == "" || strings.ToLower(str) == nullValue {
		return nil
	}
	value, ok := decodeJSON(str)
	if !ok {
		// 直接使用字符串
		return str
	}
	if num, isNum := value.(json.Number); isNum {
		if n, isInt := new(big.Int).SetString(num.String(), 10); isInt {
			return n
		}
		if f, err := num.Float64(); err == nil {
			return f
		}
	}
	return value
}

func decodeJSON(str string) (any, bool) {
	dec := json.NewDecoder(bytes.NewReader([]byte(str)))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return nil, false
	}
	// 尾部有多余内容则不是合法的单个 JSON 值
	if dec.More() {
		return nil, false
	}
	return value, true
}
