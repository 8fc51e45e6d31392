package storage

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"resume-match-go/internal/constants"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataStore_WriteThenRead(t *testing.T) {
	store, err := NewMetadataStore(t.TempDir())
	require.NoError(t, err)

	v := 7.5
	require.NoError(t, store.WriteOverride("a.pdf", &v))

	got, ok, err := store.ReadOverride("a.pdf")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 7.5, got)
}

func TestMetadataStore_ReadMissingRecord(t *testing.T) {
	store, err := NewMetadataStore(t.TempDir())
	require.NoError(t, err)

	_, ok, err := store.ReadOverride("nobody.pdf")
	require.NoError(t, err)
	assert.False(t, ok, "无记录时应返回无覆盖而非错误")
}

func TestMetadataStore_WriteRejectsOutOfRange(t *testing.T) {
	store, err := NewMetadataStore(t.TempDir())
	require.NoError(t, err)

	for _, v := range []float64{-1, 80.1, 90, math.NaN(), math.Inf(1), math.Inf(-1)} {
		value := v
		assert.ErrorIs(t, store.WriteOverride("a.pdf", &value), ErrOverrideOutOfRange, "value=%v", v)
	}

	// 边界值本身合法
	for _, v := range []float64{0, 80} {
		value := v
		assert.NoError(t, store.WriteOverride("a.pdf", &value), "value=%v", v)
	}
}

func TestMetadataStore_NilClearsOverride(t *testing.T) {
	store, err := NewMetadataStore(t.TempDir())
	require.NoError(t, err)

	v := 5.0
	require.NoError(t, store.WriteOverride("a.pdf", &v))
	require.NoError(t, store.WriteOverride("a.pdf", nil))

	_, ok, err := store.ReadOverride("a.pdf")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMetadataStore_PreservesUnknownFields(t *testing.T) {
	dir := t.TempDir()
	store, err := NewMetadataStore(dir)
	require.NoError(t, err)

	// 预置一条带未知字段的记录
	path := filepath.Join(dir, "a.pdf"+constants.MetadataSuffix)
	require.NoError(t, os.WriteFile(path, []byte(`{"notes":"keep me","tags":["go"]}`), 0644))

	v := 3.0
	require.NoError(t, store.WriteOverride("a.pdf", &v))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	record := map[string]json.RawMessage{}
	require.NoError(t, json.Unmarshal(data, &record))

	assert.Contains(t, record, "notes", "更新覆盖值时未知字段应原样保留")
	assert.Contains(t, record, "tags")
	assert.Contains(t, record, constants.OverrideField)
}

func TestMetadataStore_CorruptRecordReadAsAbsent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewMetadataStore(dir)
	require.NoError(t, err)

	path := filepath.Join(dir, "a.pdf"+constants.MetadataSuffix)
	require.NoError(t, os.WriteFile(path, []byte(`{not json`), 0644))

	_, ok, err := store.ReadOverride("a.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	// 损坏的记录不阻止后续写入
	v := 2.0
	assert.NoError(t, store.WriteOverride("a.pdf", &v))
}

func TestMetadataStore_InvalidStoredValueReadAsAbsent(t *testing.T) {
	dir := t.TempDir()
	store, err := NewMetadataStore(dir)
	require.NoError(t, err)

	tests := []string{
		`{"experience_years_override":"ten"}`,
		`{"experience_years_override":-3}`,
		`{"experience_years_override":999}`,
	}
	path := filepath.Join(dir, "a.pdf"+constants.MetadataSuffix)
	for _, content := range tests {
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
		_, ok, err := store.ReadOverride("a.pdf")
		require.NoError(t, err)
		assert.False(t, ok, "记录=%s 应按无覆盖处理", content)
	}
}

func TestMetadataStore_Delete(t *testing.T) {
	store, err := NewMetadataStore(t.TempDir())
	require.NoError(t, err)

	v := 1.0
	require.NoError(t, store.WriteOverride("a.pdf", &v))
	require.NoError(t, store.Delete("a.pdf"))

	_, ok, err := store.ReadOverride("a.pdf")
	require.NoError(t, err)
	assert.False(t, ok)

	// 重复删除不算错误
	assert.NoError(t, store.Delete("a.pdf"))
}

func TestMetadataStore_RejectsUnsafeNames(t *testing.T) {
	store, err := NewMetadataStore(t.TempDir())
	require.NoError(t, err)

	v := 1.0
	assert.ErrorIs(t, store.WriteOverride("../evil", &v), ErrUnsafeFileName)
	_, _, err = store.ReadOverride("../evil")
	assert.ErrorIs(t, err, ErrUnsafeFileName)
}
