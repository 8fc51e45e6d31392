package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"resume-match-go/internal/api/handler"
	"resume-match-go/internal/api/router"
	"resume-match-go/internal/config"
	"resume-match-go/internal/matcher"
	"resume-match-go/internal/storage"
	"resume-match-go/internal/types"

	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 固定"当前时间"为2023年6月，让 Present 区间的推断结果可复现
var testNow = time.Date(2023, time.June, 15, 0, 0, 0, 0, time.UTC)

type testEnv struct {
	hertz   *server.Hertz
	storage *storage.Storage
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	root := t.TempDir()

	cfg := &config.Config{}
	cfg.Server.Address = "127.0.0.1:0"
	cfg.Storage.ResumeDir = filepath.Join(root, "resumes")
	cfg.Storage.ParsedDir = filepath.Join(root, "parsed")
	cfg.Storage.MetadataDir = filepath.Join(root, "metadata")
	cfg.Cache.Backend = "file"

	st, err := storage.NewStorage(context.Background(), cfg)
	require.NoError(t, err)
	t.Cleanup(st.Close)

	extractor := matcher.NewTextExtractor(st.Files, st.Cache, nil, nil)
	engine := matcher.NewEngine(st, extractor,
		matcher.WithMaxWorkers(2),
		matcher.WithNowFunc(func() time.Time { return testNow }),
	)

	resumeHandler := handler.NewResumeHandler(cfg, st, engine)

	h := server.New(server.WithHostPorts("127.0.0.1:0"))
	router.RegisterRoutes(h, resumeHandler)

	return &testEnv{hertz: h, storage: st}
}

func (e *testEnv) saveResume(t *testing.T, name, content string) {
	t.Helper()
	require.NoError(t, e.storage.Files.Save(name, strings.NewReader(content)))
}

func (e *testEnv) postJSON(t *testing.T, path string, body any) *ut.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return ut.PerformRequest(e.hertz.Engine, "POST", path,
		&ut.Body{Body: bytes.NewReader(data), Len: len(data)},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	)
}

func (e *testEnv) putJSON(t *testing.T, path string, body any) *ut.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	return ut.PerformRequest(e.hertz.Engine, "PUT", path,
		&ut.Body{Body: bytes.NewReader(data), Len: len(data)},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	)
}

func (e *testEnv) match(t *testing.T, req types.SkillRequest) types.MatchResponse {
	t.Helper()
	resp := e.postJSON(t, "/api/v1/resumes/match", req)
	require.Equal(t, http.StatusOK, resp.Code, "响应体: %s", resp.Body.String())
	var out types.MatchResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &out))
	return out
}

func createMultipartUpload(t *testing.T, fileName string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = io.Copy(part, bytes.NewReader(content))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return body, writer.FormDataContentType()
}

func TestHealthEndpoint(t *testing.T) {
	env := setupTestEnv(t)
	resp := ut.PerformRequest(env.hertz.Engine, "GET", "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, resp.Code)
}

func TestUploadThenList(t *testing.T) {
	env := setupTestEnv(t)

	body, contentType := createMultipartUpload(t, "my resume (final).txt", []byte("Go developer"))
	resp := ut.PerformRequest(env.hertz.Engine, "POST", "/api/v1/resumes/upload",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType},
	)
	require.Equal(t, http.StatusOK, resp.Code, "响应体: %s", resp.Body.String())

	var uploadResp types.UploadResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &uploadResp))
	assert.Equal(t, "UPLOADED", uploadResp.Status)
	assert.NotEmpty(t, uploadResp.SubmissionID)
	// 存储名格式：<毫秒时间戳>-<清洗后的文件名>，不安全字符替换为下划线
	assert.Regexp(t, `^\d+-my_resume__final_\.txt$`, uploadResp.FileName)

	listResp := ut.PerformRequest(env.hertz.Engine, "GET", "/api/v1/resumes", nil)
	require.Equal(t, http.StatusOK, listResp.Code)
	var list types.ListResponse
	require.NoError(t, json.Unmarshal(listResp.Body.Bytes(), &list))
	assert.Equal(t, []string{uploadResp.FileName}, list.Files)
}

func TestUpload_MissingFileField(t *testing.T) {
	env := setupTestEnv(t)
	resp := ut.PerformRequest(env.hertz.Engine, "POST", "/api/v1/resumes/upload", nil)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestMatch_ExplicitExperienceFullScore(t *testing.T) {
	env := setupTestEnv(t)
	env.saveResume(t, "strong.txt", "Senior engineer with 5+ years of experience in Python and Go")

	out := env.match(t, types.SkillRequest{Skills: []string{"Python", "Go"}, MinExperience: 3})
	require.Len(t, out.Results, 1)

	r := out.Results[0]
	assert.Equal(t, 100.0, r.Match)
	assert.Equal(t, []string{"python", "go"}, r.MatchedSkills)
	require.NotNil(t, r.ExperienceFound)
	assert.Equal(t, 5.0, *r.ExperienceFound)
	require.NotNil(t, r.ExperienceUsed)
	assert.Equal(t, 5.0, *r.ExperienceUsed)
}

func TestMatch_DateRangeExperience(t *testing.T) {
	env := setupTestEnv(t)
	env.saveResume(t, "dated.txt", "Go developer at Acme\nJan 2020 - Present")

	out := env.match(t, types.SkillRequest{Skills: []string{"go"}})
	require.Len(t, out.Results, 1)

	// Jan 2020 .. Jun 2023（固定now）共42个月 => 3.5年
	require.NotNil(t, out.Results[0].ExperienceFound)
	assert.Equal(t, 3.5, *out.Results[0].ExperienceFound)
}

func TestMatch_NoSignalNoSkills(t *testing.T) {
	env := setupTestEnv(t)
	env.saveResume(t, "chef.txt", "Professional pastry chef")

	out := env.match(t, types.SkillRequest{Skills: []string{"rust"}, MinExperience: 2})
	require.Len(t, out.Results, 1)

	r := out.Results[0]
	assert.Equal(t, 0.0, r.Match)
	assert.Equal(t, []string{"rust"}, r.MissingSkills)
	assert.Nil(t, r.ExperienceFound)
	assert.Nil(t, r.ExperienceUsed)
}

func TestMatch_TokenizedAliasSkill(t *testing.T) {
	env := setupTestEnv(t)
	env.saveResume(t, "alias.txt", "Experienced node js developer")

	out := env.match(t, types.SkillRequest{Skills: []string{"node.js"}})
	require.Len(t, out.Results, 1)
	assert.Equal(t, []string{"nodejs"}, out.Results[0].MatchedSkills)
	assert.Equal(t, 100.0, out.Results[0].Match)
}

func TestMatch_SortedDescending(t *testing.T) {
	env := setupTestEnv(t)
	env.saveResume(t, "both.txt", "python and go, 6 years of experience")
	env.saveResume(t, "one.txt", "python, 6 years of experience")
	env.saveResume(t, "none.txt", "unrelated background")

	out := env.match(t, types.SkillRequest{Skills: []string{"python", "go"}})
	require.Len(t, out.Results, 3)
	assert.Equal(t, "both.txt", out.Results[0].FileName)
	assert.Equal(t, "one.txt", out.Results[1].FileName)
	assert.Equal(t, "none.txt", out.Results[2].FileName)
}

func TestMatch_InvalidRequests(t *testing.T) {
	env := setupTestEnv(t)
	env.saveResume(t, "a.txt", "go developer")

	// 空技能清单
	resp := env.postJSON(t, "/api/v1/resumes/match", types.SkillRequest{Skills: []string{}})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// 负的最低经验
	resp = env.postJSON(t, "/api/v1/resumes/match", types.SkillRequest{Skills: []string{"go"}, MinExperience: -1})
	assert.Equal(t, http.StatusBadRequest, resp.Code)

	// 非JSON请求体
	raw := []byte("not json at all")
	resp = ut.PerformRequest(env.hertz.Engine, "POST", "/api/v1/resumes/match",
		&ut.Body{Body: bytes.NewReader(raw), Len: len(raw)},
		ut.Header{Key: "Content-Type", Value: "application/json"},
	)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestMetadata_OverrideLifecycle(t *testing.T) {
	env := setupTestEnv(t)
	env.saveResume(t, "cand.txt", "go developer with 2 years of experience")

	// 初始读取：无覆盖
	resp := ut.PerformRequest(env.hertz.Engine, "GET", "/api/v1/resumes/cand.txt/metadata", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	var meta types.ResumeMetadata
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &meta))
	assert.Equal(t, "cand.txt", meta.FileName)
	assert.Nil(t, meta.ExperienceYearsOverride)

	// 越界覆盖被拒绝
	bad := 90.0
	resp = env.putJSON(t, "/api/v1/resumes/cand.txt/metadata", types.OverrideUpdateRequest{ExperienceYearsOverride: &bad})
	assert.Equal(t, http.StatusBadRequest, resp.Code, "90超出[0,80]应被拒绝")

	// 合法覆盖写入成功
	good := 40.0
	resp = env.putJSON(t, "/api/v1/resumes/cand.txt/metadata", types.OverrideUpdateRequest{ExperienceYearsOverride: &good})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ut.PerformRequest(env.hertz.Engine, "GET", "/api/v1/resumes/cand.txt/metadata", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &meta))
	require.NotNil(t, meta.ExperienceYearsOverride)
	assert.Equal(t, 40.0, *meta.ExperienceYearsOverride)

	// 覆盖值参与打分：推断2年，覆盖40年，门槛5年 => 不惩罚
	out := env.match(t, types.SkillRequest{Skills: []string{"go"}, MinExperience: 5})
	require.Len(t, out.Results, 1)
	r := out.Results[0]
	require.NotNil(t, r.ExperienceOverride)
	assert.Equal(t, 40.0, *r.ExperienceOverride)
	require.NotNil(t, r.ExperienceUsed)
	assert.Equal(t, 40.0, *r.ExperienceUsed)
	assert.Equal(t, 100.0, r.Match)

	// null清除覆盖
	resp = env.putJSON(t, "/api/v1/resumes/cand.txt/metadata", types.OverrideUpdateRequest{})
	require.Equal(t, http.StatusOK, resp.Code)

	resp = ut.PerformRequest(env.hertz.Engine, "GET", "/api/v1/resumes/cand.txt/metadata", nil)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &meta))
	assert.Nil(t, meta.ExperienceYearsOverride, "写入null后覆盖应被清除")
}

func TestMetadata_UnknownResume(t *testing.T) {
	env := setupTestEnv(t)

	resp := ut.PerformRequest(env.hertz.Engine, "GET", "/api/v1/resumes/ghost.txt/metadata", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	v := 5.0
	resp = env.putJSON(t, "/api/v1/resumes/ghost.txt/metadata", types.OverrideUpdateRequest{ExperienceYearsOverride: &v})
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestDelete_RemovesResumeAndDerivedData(t *testing.T) {
	env := setupTestEnv(t)
	env.saveResume(t, "gone.txt", "go developer")

	v := 3.0
	require.NoError(t, env.storage.Metadata.WriteOverride("gone.txt", &v))
	// 先跑一次匹配，让缓存侧文件生成
	env.match(t, types.SkillRequest{Skills: []string{"go"}})

	resp := ut.PerformRequest(env.hertz.Engine, "DELETE", "/api/v1/resumes/gone.txt", nil)
	require.Equal(t, http.StatusOK, resp.Code)

	// 文件、缓存、元数据全部清理
	_, err := env.storage.Files.Stat("gone.txt")
	assert.ErrorIs(t, err, storage.ErrResumeNotFound)
	_, hit, err := env.storage.Cache.Get(context.Background(), "gone.txt", time.Time{})
	require.NoError(t, err)
	assert.False(t, hit)
	_, ok, err := env.storage.Metadata.ReadOverride("gone.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	// 再次删除返回404
	resp = ut.PerformRequest(env.hertz.Engine, "DELETE", "/api/v1/resumes/gone.txt", nil)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestUploadMatchRoundTrip(t *testing.T) {
	env := setupTestEnv(t)

	content := []byte("Backend engineer, 4 years of experience with Go and Python")
	body, contentType := createMultipartUpload(t, "roundtrip.txt", content)
	resp := ut.PerformRequest(env.hertz.Engine, "POST", "/api/v1/resumes/upload",
		&ut.Body{Body: body, Len: body.Len()},
		ut.Header{Key: "Content-Type", Value: contentType},
	)
	require.Equal(t, http.StatusOK, resp.Code)

	var uploadResp types.UploadResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &uploadResp))

	out := env.match(t, types.SkillRequest{Skills: []string{"go", "python"}, MinExperience: 3})
	require.Len(t, out.Results, 1)
	assert.Equal(t, uploadResp.FileName, out.Results[0].FileName)
	assert.Equal(t, 100.0, out.Results[0].Match)
}

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"resume.pdf", "resume.pdf"},
		{"my resume (final).pdf", "my_resume__final_.pdf"},
		{"../../etc/passwd", "passwd"},
		{"简历.pdf", "__.pdf"},
		{"", "resume"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, handler.SanitizeFileName(tt.in), "输入=%q", tt.in)
	}
}
