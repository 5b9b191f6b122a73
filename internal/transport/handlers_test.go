package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/color"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/disintegration/imaging"
	"github.com/fnodes/ImageScaler/internal/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/wb-go/wbf/ginext"
)

func TestTaskHandler_Ping(t *testing.T) {
	r := gin.New()
	h := NewTaskHandler(nil)

	r.GET("/ping", func(c *gin.Context) {
		h.SimplePinger((*ginext.Context)(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	w := httptest.NewRecorder()

	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, "pong", body["message"])
}

func newMultipartRequest(t *testing.T, target string, fields map[string]string, files map[string][]byte) *http.Request {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for name, content := range files {
		fw, err := w.CreateFormFile(name, name+".png")
		require.NoError(t, err)
		_, err = fw.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()

	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 100, G: 100, B: 200, A: 255})
		}
	}

	var buf bytes.Buffer
	require.NoError(t, imaging.Encode(&buf, img, imaging.PNG))
	return buf.Bytes()
}

func TestTaskHandler_Create(t *testing.T) {
	tests := []struct {
		name       string
		req        *http.Request
		mock       *mockTaskService
		wantStatus int
	}{
		{
			name: "success",
			req: newMultipartRequest(t, "/tasks",
				map[string]string{"operation": string(model.OpScaleBySide), "size": "256", "shorter": "true"},
				map[string][]byte{"image": []byte("img")},
			),
			mock: &mockTaskService{
				createFn: func(ctx context.Context, d *model.TaskCreateData) (*model.Task, error) {
					require.NotNil(t, d.OrigImg)
					require.NotNil(t, d.Params.Size)
					require.Equal(t, 256, *d.Params.Size)
					require.NotNil(t, d.Params.Shorter)
					require.True(t, *d.Params.Shorter)
					return &model.Task{UID: uuid.New()}, nil
				},
			},
			wantStatus: 201,
		},
		{
			// A 500 from the mock would expose the handler calling the
			// service; the 400 must come from form parsing alone.
			name: "malformed option value",
			req: newMultipartRequest(t, "/tasks",
				map[string]string{"operation": string(model.OpScaleBySide), "size": "abc"},
				map[string][]byte{"image": []byte("img")},
			),
			mock: &mockTaskService{
				createFn: func(ctx context.Context, d *model.TaskCreateData) (*model.Task, error) {
					return nil, model.ErrCommon500
				},
			},
			wantStatus: 400,
		},
		{
			name: "missing image",
			req: newMultipartRequest(t, "/tasks",
				map[string]string{"operation": string(model.OpRotate)},
				nil,
			),
			mock:       &mockTaskService{},
			wantStatus: 400,
		},
		{
			name: "service validation error",
			req: newMultipartRequest(t, "/tasks",
				map[string]string{"operation": "bad-op"},
				map[string][]byte{"image": []byte("img")},
			),
			mock: &mockTaskService{
				createFn: func(ctx context.Context, d *model.TaskCreateData) (*model.Task, error) {
					return nil, model.ErrIncorrectOp
				},
			},
			wantStatus: 400,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			h := NewTaskHandler(tt.mock)

			r.POST("/tasks", func(c *gin.Context) {
				h.Create((*ginext.Context)(c))
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, tt.req)

			require.Equal(t, tt.wantStatus, w.Code)
		})
	}
}

func TestTaskHandler_ImageSize(t *testing.T) {
	r := gin.New()
	h := NewTaskHandler(&mockTaskService{})

	r.POST("/images/size", func(c *gin.Context) {
		h.ImageSize((*ginext.Context)(c))
	})

	req := newMultipartRequest(t, "/images/size", nil,
		map[string][]byte{"image": testPNG(t, 640, 480)})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var body map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, 640, body["width"])
	require.Equal(t, 480, body["height"])
	require.Equal(t, 1, body["count"])
}

func TestTaskHandler_ImageSize_BadImage(t *testing.T) {
	r := gin.New()
	h := NewTaskHandler(&mockTaskService{})

	r.POST("/images/size", func(c *gin.Context) {
		h.ImageSize((*ginext.Context)(c))
	})

	req := newMultipartRequest(t, "/images/size", nil,
		map[string][]byte{"image": []byte("not-an-image")})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, 400, w.Code)
}

func TestTaskHandler_ScaleRatio(t *testing.T) {
	r := gin.New()
	h := NewTaskHandler(&mockTaskService{})

	r.POST("/images/scale-ratio", func(c *gin.Context) {
		h.ScaleRatio((*ginext.Context)(c))
	})

	req := newMultipartRequest(t, "/images/scale-ratio",
		map[string]string{"target_max_size": "1920"},
		map[string][]byte{"image": testPNG(t, 1000, 500)})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var body struct {
		RescaleRatio float64 `json:"rescale_ratio"`
		Width        int     `json:"width"`
		Height       int     `json:"height"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.InDelta(t, 1.92, body.RescaleRatio, 1e-9)
	require.Equal(t, 1920, body.Width)
	require.Equal(t, 960, body.Height)
}

func TestTaskHandler_GetTask(t *testing.T) {
	id := uuid.New()
	r := gin.New()
	h := NewTaskHandler(&mockTaskService{
		getFn: func(ctx context.Context, got string) (*model.Task, error) {
			require.Equal(t, id.String(), got)
			return &model.Task{UID: id, Status: model.StatusDone}, nil
		},
	})

	r.GET("/tasks/:id", func(c *gin.Context) {
		h.GetTask((*ginext.Context)(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks/"+id.String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)

	var body model.Task
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Equal(t, id, body.UID)
	require.Equal(t, model.StatusDone, body.Status)
}

func TestTaskHandler_GetTask_NotFound(t *testing.T) {
	r := gin.New()
	h := NewTaskHandler(&mockTaskService{
		getFn: func(ctx context.Context, id string) (*model.Task, error) {
			return nil, model.ErrTaskNotFound
		},
	})

	r.GET("/tasks/:id", func(c *gin.Context) {
		h.GetTask((*ginext.Context)(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, 404, w.Code)
}

func TestTaskHandler_ScaleRatio_BadTarget(t *testing.T) {
	r := gin.New()
	h := NewTaskHandler(&mockTaskService{})

	r.POST("/images/scale-ratio", func(c *gin.Context) {
		h.ScaleRatio((*ginext.Context)(c))
	})

	req := newMultipartRequest(t, "/images/scale-ratio",
		map[string]string{"target_max_size": "huge"},
		map[string][]byte{"image": testPNG(t, 100, 100)})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, 400, w.Code)
}

func TestTaskHandler_LoadResult(t *testing.T) {
	r := gin.New()
	h := NewTaskHandler(&mockTaskService{
		loadResultFn: func(ctx context.Context, id string) (io.ReadCloser, string, error) {
			return io.NopCloser(bytes.NewReader([]byte("png-bytes"))), model.PNG, nil
		},
	})

	r.GET("/tasks/:id/result", func(c *gin.Context) {
		h.LoadResult((*ginext.Context)(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks/"+uuid.New().String()+"/result", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	require.Equal(t, model.PNG, w.Header().Get("Content-Type"))
	require.Equal(t, "png-bytes", w.Body.String())
}

func TestTaskHandler_LoadResultMask_NotAvailable(t *testing.T) {
	r := gin.New()
	h := NewTaskHandler(&mockTaskService{
		loadResultMaskFn: func(ctx context.Context, id string) (io.ReadCloser, string, error) {
			return nil, "", model.ErrMaskNotAvailable
		},
	})

	r.GET("/tasks/:id/mask", func(c *gin.Context) {
		h.LoadResultMask((*ginext.Context)(c))
	})

	req := httptest.NewRequest(http.MethodGet, "/tasks/"+uuid.New().String()+"/mask", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, 404, w.Code)
}

func TestTaskHandler_Delete(t *testing.T) {
	r := gin.New()
	h := NewTaskHandler(&mockTaskService{
		deleteFn: func(ctx context.Context, id string) error {
			return nil
		},
	})

	r.DELETE("/tasks/:id", func(c *gin.Context) {
		h.Delete((*ginext.Context)(c))
	})

	req := httptest.NewRequest(http.MethodDelete, "/tasks/"+uuid.New().String(), nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, 204, w.Code)
}
