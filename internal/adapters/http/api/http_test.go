package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/okian/underdog/internal/adapters/http/api"
	service "github.com/okian/underdog/internal/app"
	"github.com/okian/underdog/internal/domain/model"
	"github.com/okian/underdog/internal/domain/types"
	"github.com/okian/underdog/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

const referenceBody = `{
	"recent": ["A","B","C","D","E","F","A","B","C","D"],
	"counts": {"A":20,"B":20,"C":15,"D":15,"E":15,"F":15}
}`

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

// failingDeps embeds a real service but fails every analysis with an
// unclassified error.
type failingDeps struct {
	*service.Service
}

func (failingDeps) Analyze(context.Context, []model.Competitor, map[model.Competitor]int) (types.Report, error) {
	return types.Report{}, errors.New("boom")
}

type reportBody struct {
	Recommendation []string `json:"recommendation"`
	Reasons        []struct {
		Competitor string `json:"competitor"`
		Reasons    []struct {
			Kind   string `json:"kind"`
			Streak int    `json:"streak"`
			Text   string `json:"text"`
		} `json:"reasons"`
	} `json:"reasons"`
	ReasonsText map[string]string `json:"reasons_text"`
	LowWins     []struct {
		Competitor string `json:"competitor"`
		Count      int    `json:"count"`
	} `json:"low_wins"`
	AllExcluded  bool           `json:"all_excluded"`
	Recent       []string       `json:"recent"`
	Distribution map[string]int `json:"distribution"`
}

type sessionBody struct {
	ID        string     `json:"id"`
	Rounds    int        `json:"rounds"`
	Duplicate bool       `json:"duplicate"`
	Report    reportBody `json:"report"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func newTestService(t *testing.T) *service.Service {
	t.Helper()
	roster, err := model.NewRoster("A", "B", "C", "D", "E", "F")
	if err != nil {
		t.Fatal(err)
	}
	svc := service.New(service.WithRoster(roster))
	if err := svc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	return svc
}

func newMux(deps api.Dependencies, opts ...api.ServerOption) *http.ServeMux {
	server := api.NewServer(deps, &mockStatsProvider{stats: map[string]interface{}{"started": true}}, opts...)
	mux := http.NewServeMux()
	server.Register(context.Background(), mux)
	return mux
}

func do(mux *http.ServeMux, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)
	return w
}

func decode(w *httptest.ResponseRecorder, v any) {
	So(json.Unmarshal(w.Body.Bytes(), v), ShouldBeNil)
}

func TestServer_Register(t *testing.T) {
	Convey("Given a registered API server", t, func() {
		svc := newTestService(t)
		defer svc.Stop()
		mux := newMux(svc)

		Convey("Then health endpoint exposes metrics", func() {
			w := do(mux, http.MethodGet, "/healthz", "")
			So(w.Code, ShouldEqual, http.StatusOK)
		})

		Convey("And stats endpoint should be accessible", func() {
			w := do(mux, http.MethodGet, "/stats", "")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"started":true`)
		})

		Convey("And unknown paths return 404", func() {
			So(do(mux, http.MethodGet, "/unknown", "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("And wrong methods return 404", func() {
			So(do(mux, http.MethodGet, "/analyze", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/roster", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPost, "/stats", "").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestRosterHandler(t *testing.T) {
	Convey("Given GET /roster", t, func() {
		svc := newTestService(t)
		defer svc.Stop()
		w := do(newMux(svc), http.MethodGet, "/roster", "")

		Convey("Then the roster and parameters are returned", func() {
			So(w.Code, ShouldEqual, http.StatusOK)
			var body map[string]any
			decode(w, &body)
			So(body["competitors"], ShouldResemble, []any{"A", "B", "C", "D", "E", "F"})
			So(body["window_size"], ShouldEqual, float64(100))
			So(body["recent_size"], ShouldEqual, float64(10))
			So(body["streak_threshold"], ShouldEqual, float64(2))
		})
	})
}

func TestAnalyzeHandler(t *testing.T) {
	Convey("Given POST /analyze", t, func() {
		svc := newTestService(t)
		defer svc.Stop()
		mux := newMux(svc)

		Convey("When the reference inputs are posted", func() {
			w := do(mux, http.MethodPost, "/analyze", referenceBody)
			So(w.Code, ShouldEqual, http.StatusOK)

			var body reportBody
			decode(w, &body)

			Convey("Then the report names E and F", func() {
				So(body.Recommendation, ShouldResemble, []string{"E", "F"})
				So(body.AllExcluded, ShouldBeFalse)
				So(body.Distribution["A"], ShouldEqual, 20)
			})

			Convey("And reasons are rendered in roster order", func() {
				So(body.Reasons, ShouldHaveLength, 4)
				So(body.Reasons[0].Competitor, ShouldEqual, "A")
				So(body.Reasons[1].Competitor, ShouldEqual, "B")
				So(body.ReasonsText["B"], ShouldEqual, "recently won, wins the most")
				So(body.ReasonsText["A"], ShouldEqual, "wins the most")
			})
		})

		Convey("When the same competitor won every recent contest", func() {
			w := do(mux, http.MethodPost, "/analyze", `{
				"recent": ["A","A","A","A","A","A","A","A","A","A"],
				"counts": {"A":50,"B":50,"C":0,"D":0,"E":0,"F":0}
			}`)
			So(w.Code, ShouldEqual, http.StatusOK)

			var body reportBody
			decode(w, &body)
			So(body.ReasonsText["A"], ShouldEqual, "recently won, on a winning streak of 10, wins the most")
			So(body.Recommendation, ShouldResemble, []string{"C", "D", "E", "F"})
			So(body.LowWins, ShouldHaveLength, 4)
		})

		Convey("When counts sum to 95", func() {
			w := do(mux, http.MethodPost, "/analyze", `{
				"recent": ["A","B","C","D","E","F","A","B","C","D"],
				"counts": {"A":20,"B":20,"C":15,"D":15,"E":15,"F":10}
			}`)

			Convey("Then it is rejected with invalid_distribution", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var body errorBody
				decode(w, &body)
				So(body.Code, ShouldEqual, model.KindInvalidDistribution)
				So(body.Message, ShouldContainSubstring, "must be 100, got 95")
			})
		})

		Convey("When history is too short", func() {
			w := do(mux, http.MethodPost, "/analyze", `{"recent":["A"],"counts":{"A":100}}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			var body errorBody
			decode(w, &body)
			So(body.Code, ShouldEqual, model.KindInvalidHistory)
		})

		Convey("When counts name an unknown competitor", func() {
			w := do(mux, http.MethodPost, "/analyze", `{
				"recent": ["A","B","C","D","E","F","A","B","C","D"],
				"counts": {"A":20,"B":20,"C":15,"D":15,"E":15,"Z":15}
			}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			var body errorBody
			decode(w, &body)
			So(body.Code, ShouldEqual, model.KindUnknownCompetitor)
		})

		Convey("When the body is malformed", func() {
			w := do(mux, http.MethodPost, "/analyze", `{"recent":`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			var body errorBody
			decode(w, &body)
			So(body.Code, ShouldEqual, "bad_request")
		})

		Convey("When the body has unknown fields", func() {
			w := do(mux, http.MethodPost, "/analyze", `{"recent":[],"counts":{},"extra":1}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When the dependency fails unexpectedly", func() {
			w := do(newMux(failingDeps{svc}), http.MethodPost, "/analyze", referenceBody)
			So(w.Code, ShouldEqual, http.StatusInternalServerError)
		})
	})
}

func TestSessionsHandler(t *testing.T) {
	Convey("Given a created session", t, func() {
		svc := newTestService(t)
		defer svc.Stop()
		mux := newMux(svc)

		w := do(mux, http.MethodPost, "/sessions", referenceBody)
		So(w.Code, ShouldEqual, http.StatusCreated)
		var created sessionBody
		decode(w, &created)
		So(created.ID, ShouldNotBeEmpty)
		So(w.Header().Get("Location"), ShouldEqual, "/sessions/"+created.ID)
		So(created.Report.Recommendation, ShouldResemble, []string{"E", "F"})

		Convey("When it is fetched", func() {
			w := do(mux, http.MethodGet, "/sessions/"+created.ID, "")
			So(w.Code, ShouldEqual, http.StatusOK)
			var got sessionBody
			decode(w, &got)
			So(got.ID, ShouldEqual, created.ID)
			So(got.Rounds, ShouldEqual, 0)
		})

		Convey("When a round is played", func() {
			w := do(mux, http.MethodPost, "/sessions/"+created.ID+"/rounds", `{"winner":"E","round_id":"r1"}`)
			So(w.Code, ShouldEqual, http.StatusOK)
			var got sessionBody
			decode(w, &got)

			Convey("Then the window has rolled forward", func() {
				So(got.Rounds, ShouldEqual, 1)
				So(got.Duplicate, ShouldBeFalse)
				So(got.Report.Recent[9], ShouldEqual, "E")
				So(got.Report.Distribution["A"], ShouldEqual, 19)
				So(got.Report.Distribution["E"], ShouldEqual, 16)
				So(got.Report.Recommendation, ShouldResemble, []string{"A", "F"})
			})

			Convey("And replaying it is flagged as a duplicate", func() {
				w := do(mux, http.MethodPost, "/sessions/"+created.ID+"/rounds", `{"winner":"E","round_id":"r1"}`)
				So(w.Code, ShouldEqual, http.StatusOK)
				var again sessionBody
				decode(w, &again)
				So(again.Duplicate, ShouldBeTrue)
				So(again.Rounds, ShouldEqual, 1)
			})
		})

		Convey("When a round names an unknown winner", func() {
			w := do(mux, http.MethodPost, "/sessions/"+created.ID+"/rounds", `{"winner":"Z"}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			var body errorBody
			decode(w, &body)
			So(body.Code, ShouldEqual, model.KindUnknownCompetitor)
		})

		Convey("When a round omits the winner", func() {
			w := do(mux, http.MethodPost, "/sessions/"+created.ID+"/rounds", `{}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})

		Convey("When it is deleted", func() {
			So(do(mux, http.MethodDelete, "/sessions/"+created.ID, "").Code, ShouldEqual, http.StatusNoContent)

			Convey("Then it is gone", func() {
				So(do(mux, http.MethodGet, "/sessions/"+created.ID, "").Code, ShouldEqual, http.StatusNotFound)
				So(do(mux, http.MethodDelete, "/sessions/"+created.ID, "").Code, ShouldEqual, http.StatusNotFound)
				So(do(mux, http.MethodPost, "/sessions/"+created.ID+"/rounds", `{"winner":"A"}`).Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When the path is malformed", func() {
			So(do(mux, http.MethodGet, "/sessions/", "").Code, ShouldEqual, http.StatusBadRequest)
			So(do(mux, http.MethodGet, "/sessions/"+created.ID+"/other", "").Code, ShouldEqual, http.StatusNotFound)
			So(do(mux, http.MethodPut, "/sessions/"+created.ID, "").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When creation input is invalid", func() {
			w := do(mux, http.MethodPost, "/sessions", `{"recent":[],"counts":{}}`)
			So(w.Code, ShouldEqual, http.StatusBadRequest)
		})
	})
}

func TestRateLimit(t *testing.T) {
	Convey("Given a server limited to a burst of one", t, func() {
		svc := newTestService(t)
		defer svc.Stop()
		mux := newMux(svc, api.WithRateLimit(0.001, 1))

		Convey("When two requests arrive back to back", func() {
			first := do(mux, http.MethodGet, "/roster", "")
			second := do(mux, http.MethodGet, "/roster", "")

			Convey("Then the second is rejected with 429", func() {
				So(first.Code, ShouldEqual, http.StatusOK)
				So(second.Code, ShouldEqual, http.StatusTooManyRequests)
				var body errorBody
				decode(second, &body)
				So(body.Code, ShouldEqual, "rate_limited")
			})

			Convey("And health checks are never limited", func() {
				So(do(mux, http.MethodGet, "/healthz", "").Code, ShouldEqual, http.StatusOK)
			})
		})
	})

	Convey("Given a non-positive rate", t, func() {
		svc := newTestService(t)
		defer svc.Stop()
		mux := newMux(svc, api.WithRateLimit(0, 0))

		Convey("Then limiting is disabled", func() {
			for i := 0; i < 5; i++ {
				So(do(mux, http.MethodGet, "/roster", "").Code, ShouldEqual, http.StatusOK)
			}
		})
	})
}
