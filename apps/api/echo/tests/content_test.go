package tests

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/trezcool/mazoezi/core/content"
	"github.com/trezcool/mazoezi/core/user"
	testutil "github.com/trezcool/mazoezi/tests"
)

func Test_contentApi_moduleQuery(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", user.StaffRoles, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin01", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	published := testutil.CreateModule(t, cntRepo, "Greeting Guests", content.CategoryWelcome, true)
	draft := testutil.CreateModule(t, cntRepo, "Fire Drill", content.CategorySafety, false)

	staffToken := getToken(t, staff)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/modules", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Staff see published only", path: "/v1/modules", token: staffToken, wantData: marchallList(t, published)},
		{name: "Staff cannot ask for drafts", path: "/v1/modules?all=true", token: staffToken, wantData: marchallList(t, published)},
		{name: "Admin defaults to published", path: "/v1/modules", token: adminToken, wantData: marchallList(t, published)},
		{name: "Admin can ask for drafts", path: "/v1/modules?all=true", token: adminToken, wantData: marchallList(t, published, draft)},
		{name: "By category", path: "/v1/modules?category=" + content.CategoryWelcome, token: staffToken, wantData: marchallList(t, published)},
		{name: "By search (unknown)", path: "/v1/modules?search=sushi", token: staffToken, wantData: marchallList(t, []interface{}{}...)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_contentApi_moduleRetrieve(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", user.StaffRoles, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin01", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	published := testutil.CreateModule(t, cntRepo, "Greeting Guests", content.CategoryWelcome, true)
	draft := testutil.CreateModule(t, cntRepo, "Fire Drill", content.CategorySafety, false)

	notFound := marchallObj(t, httpErr{Error: "not found"})
	tests := []httpTest{
		{name: "Auth required", path: "/v1/modules/" + published.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Unknown module", path: "/v1/modules/nope", token: getToken(t, staff), wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "module not found"})},
		{name: "Staff get published", path: "/v1/modules/" + published.ID, token: getToken(t, staff), wantCode: http.StatusOK, wantData: marchallObj(t, published)},
		{name: "Drafts hidden from staff", path: "/v1/modules/" + draft.ID, token: getToken(t, staff), wantCode: http.StatusNotFound, wantData: notFound},
		{name: "Admin get drafts", path: "/v1/modules/" + draft.ID, token: getToken(t, admin), wantCode: http.StatusOK, wantData: marchallObj(t, draft)},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_contentApi_moduleCreate(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", user.StaffRoles, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin01", "admin@test.cd", "", []string{user.RoleAdmin}, true)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, staff), wantCode: http.StatusForbidden,
			body:     marchallObj(t, content.NewModule{Title: "Wine Pairings", Category: content.CategoryMenu}),
			wantData: marchallObj(t, httpErr{Error: "permission denied"}),
		},
		{
			name: "Bad category", token: getToken(t, admin), wantCode: http.StatusBadRequest,
			body:     marchallObj(t, content.NewModule{Title: "Wine Pairings", Category: "booze"}),
			wantData: marchallObj(t, map[string]string{"category": "category must be one of [welcome menu policies skills safety]"}),
		},
		{
			name: "Created as draft", token: getToken(t, admin), wantCode: http.StatusCreated,
			body: marchallObj(t, content.NewModule{Title: "Wine Pairings", Category: content.CategoryMenu}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/modules"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
				}
				var mod content.Module
				if err := json.Unmarshal(rec.Body.Bytes(), &mod); err != nil {
					t.Fatalf("json.Unmarshal() failed: %v", err)
				}
				assert.False(t, mod.IsPublished)
				assert.Equal(t, 5, mod.DurationMinutes) // default
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_contentApi_togglePublish(t *testing.T) {
	app := setup(t)

	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin01", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	draft := testutil.CreateModule(t, cntRepo, "Fire Drill", content.CategorySafety, false)
	token := getToken(t, admin)

	req, rec := newAuthRequest(http.MethodPost, "/v1/modules/"+draft.ID+"/publish", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var mod content.Module
	if err := json.Unmarshal(rec.Body.Bytes(), &mod); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	assert.True(t, mod.IsPublished)

	req, rec = newAuthRequest(http.MethodPost, "/v1/modules/"+draft.ID+"/publish", token)
	app.ServeHTTP(rec, req)
	if err := json.Unmarshal(rec.Body.Bytes(), &mod); err != nil {
		t.Fatalf("json.Unmarshal() failed: %v", err)
	}
	assert.False(t, mod.IsPublished)
}

func Test_contentApi_decks(t *testing.T) {
	app := setup(t)

	staff := testutil.CreateUser(t, usrRepo, "Hero", "hero01", "hero@test.cd", "", user.StaffRoles, true)
	admin := testutil.CreateUser(t, usrRepo, "Admin", "admin01", "admin@test.cd", "", []string{user.RoleAdmin}, true)
	mod := testutil.CreateModule(t, cntRepo, "Knife Skills", content.CategorySkills, true)
	d1 := testutil.CreateDeck(t, cntRepo, mod.ID, "Grip", 0)
	d2 := testutil.CreateDeck(t, cntRepo, mod.ID, "Honing", 1)

	t.Run("Query decks in order", func(t *testing.T) {
		tt := httpTest{token: getToken(t, staff), wantCode: http.StatusOK, wantData: marchallList(t, d1, d2)}
		req, rec := newAuthRequest(http.MethodGet, "/v1/modules/"+mod.ID+"/decks", tt.token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Unknown module", func(t *testing.T) {
		tt := httpTest{wantCode: http.StatusNotFound, wantData: marchallObj(t, httpErr{Error: "module not found"})}
		req, rec := newAuthRequest(http.MethodGet, "/v1/modules/nope/decks", getToken(t, staff))
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Deck creation is admin only", func(t *testing.T) {
		body := marchallObj(t, content.NewDeck{ModuleID: mod.ID, Title: "Chopping"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/decks", getToken(t, staff), body)
		app.ServeHTTP(rec, req)
		tt := httpTest{wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "permission denied"})}
		checkCodeAndData(t, tt, rec)
	})

	t.Run("Deck appended at the end", func(t *testing.T) {
		body := marchallObj(t, content.NewDeck{ModuleID: mod.ID, Title: "Chopping"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/decks", getToken(t, admin), body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var deck content.Deck
		if err := json.Unmarshal(rec.Body.Bytes(), &deck); err != nil {
			t.Fatalf("json.Unmarshal() failed: %v", err)
		}
		assert.Equal(t, 2, deck.Order)
		assert.Equal(t, "lightbulb", deck.Icon) // default
	})
}
