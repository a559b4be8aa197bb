package httpapi

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"edcore.org/internal/access"
)

func TestAccessMapSelfRead(t *testing.T) {
	api, backend := newTestAPI(t)
	_ = backend.accessStore.Upsert(context.Background(), access.Grant{
		PrincipalID: "stu-1", Module: "attendance", Level: access.LevelView,
	})

	token := api.obtainToken("stu-1", access.RoleStudent, "school-1")
	resp := api.get("/v1/access/stu-1", nil, bearerHeader(token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	modules := payload["modules"].(map[string]any)
	if modules["attendance"] != "view" {
		t.Fatalf("unexpected modules: %v", modules)
	}
}

func TestAccessMapOfOtherRequiresSettings(t *testing.T) {
	api, _ := newTestAPI(t)

	token := api.obtainToken("fac-1", access.RoleFaculty, "school-1")
	resp := api.get("/v1/access/stu-1", nil, bearerHeader(token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestSuperAdminBypassesGrantChecks(t *testing.T) {
	api, _ := newTestAPI(t)

	token := api.obtainToken("root", access.RoleSuperAdmin, "")
	resp := api.get("/v1/access/stu-1", nil, bearerHeader(token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}

func TestGrantUpsertAndRemove(t *testing.T) {
	api, _ := newTestAPI(t)
	admin := api.obtainToken("root", access.RoleSuperAdmin, "")

	resp := api.put("/v1/access/fac-9/attendance", map[string]any{
		"access_level": "edit",
	}, bearerHeader(admin))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("upsert: expected 204, got %d", resp.StatusCode)
	}

	resp = api.get("/v1/access/fac-9", nil, bearerHeader(admin))
	payload := decode[map[string]any](t, resp)
	modules := payload["modules"].(map[string]any)
	if modules["attendance"] != "edit" {
		t.Fatalf("grant not visible: %v", modules)
	}

	resp = api.do(http.MethodDelete, "/v1/access/fac-9/attendance", nil, bearerHeader(admin))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("remove: expected 204, got %d", resp.StatusCode)
	}

	resp = api.do(http.MethodDelete, "/v1/access/fac-9/attendance", nil, bearerHeader(admin))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("remove absent: expected 404, got %d", resp.StatusCode)
	}
}

func TestGrantUpsertUnknownLevelCollapsesToNone(t *testing.T) {
	api, backend := newTestAPI(t)
	admin := api.obtainToken("root", access.RoleSuperAdmin, "")

	resp := api.put("/v1/access/fac-9/attendance", map[string]any{
		"access_level": "supreme",
	}, bearerHeader(admin))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}
	m, err := backend.accessStore.Get(context.Background(), "fac-9")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if m["attendance"] != access.LevelNone {
		t.Fatalf("unknown level should persist as none, got %q", m["attendance"])
	}
}

func TestBulkReplace(t *testing.T) {
	api, _ := newTestAPI(t)
	admin := api.obtainToken("root", access.RoleSuperAdmin, "")

	resp := api.put("/v1/access/fac-2", map[string]any{
		"grants": []map[string]any{
			{"module": "attendance", "access_level": "all"},
			{"module": "reports", "access_level": "view"},
		},
	}, bearerHeader(admin))
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", resp.StatusCode)
	}

	resp = api.get("/v1/access/fac-2", nil, bearerHeader(admin))
	payload := decode[map[string]any](t, resp)
	modules := payload["modules"].(map[string]any)
	if len(modules) != 2 || modules["attendance"] != "all" {
		t.Fatalf("unexpected modules: %v", modules)
	}
}

func TestBulkReplaceRejectsDuplicates(t *testing.T) {
	api, _ := newTestAPI(t)
	admin := api.obtainToken("root", access.RoleSuperAdmin, "")

	resp := api.put("/v1/access/fac-2", map[string]any{
		"grants": []map[string]any{
			{"module": "attendance", "access_level": "all"},
			{"module": "attendance", "access_level": "view"},
		},
	}, bearerHeader(admin))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestProvisionStudentDefaults(t *testing.T) {
	api, _ := newTestAPI(t)
	admin := api.obtainToken("root", access.RoleSuperAdmin, "")

	resp := api.post("/v1/access/stu-7/provision", map[string]any{
		"role": "student",
	}, bearerHeader(admin))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = api.get("/v1/access/stu-7", nil, bearerHeader(admin))
	payload := decode[map[string]any](t, resp)
	modules := payload["modules"].(map[string]any)
	if len(modules) == 0 {
		t.Fatalf("expected provisioned modules, got none")
	}
	if modules["attendance"] != "view" {
		t.Fatalf("student attendance should be view, got %v", modules["attendance"])
	}
}

func TestProvisionUnknownRole(t *testing.T) {
	api, _ := newTestAPI(t)
	admin := api.obtainToken("root", access.RoleSuperAdmin, "")

	resp := api.post("/v1/access/stu-7/provision", map[string]any{
		"role": "wizard",
	}, bearerHeader(admin))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestProvisionRequiresSettingsEdit(t *testing.T) {
	api, _ := newTestAPI(t)

	token := api.obtainToken("stu-1", access.RoleStudent, "school-1")
	resp := api.post("/v1/access/stu-7/provision", map[string]any{
		"role": "student",
	}, bearerHeader(token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestEvaluateSelf(t *testing.T) {
	api, backend := newTestAPI(t)
	_ = backend.accessStore.Upsert(context.Background(), access.Grant{
		PrincipalID: "fac-1", Module: "attendance", Level: access.LevelEdit,
	})

	token := api.obtainToken("fac-1", access.RoleFaculty, "school-1")
	resp := api.get("/v1/access/fac-1/evaluate", url.Values{"module": {"attendance"}}, bearerHeader(token))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	payload := decode[map[string]any](t, resp)
	decision := payload["decision"].(map[string]any)
	if decision["can_edit"] != true || decision["can_delete"] != false {
		t.Fatalf("unexpected decision: %v", decision)
	}
}

func TestEvaluateMissingModuleParam(t *testing.T) {
	api, _ := newTestAPI(t)
	token := api.obtainToken("fac-1", access.RoleFaculty, "school-1")
	resp := api.get("/v1/access/fac-1/evaluate", nil, bearerHeader(token))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestEvaluateOtherUsesStoredGrantsNotCallerRole(t *testing.T) {
	api, backend := newTestAPI(t)
	_ = backend.accessStore.Upsert(context.Background(), access.Grant{
		PrincipalID: "stu-1", Module: "fees", Level: access.LevelView,
	})

	admin := api.obtainToken("root", access.RoleSuperAdmin, "")
	resp := api.get("/v1/access/stu-1/evaluate", url.Values{"module": {"fees"}}, bearerHeader(admin))
	payload := decode[map[string]any](t, resp)
	decision := payload["decision"].(map[string]any)
	if decision["can_view"] != true {
		t.Fatalf("expected can_view for stored grant: %v", decision)
	}
	if decision["has_full"] != false {
		t.Fatalf("caller's super_admin role must not leak into the subject: %v", decision)
	}
}

func TestAccessMethodNotAllowed(t *testing.T) {
	api, _ := newTestAPI(t)
	admin := api.obtainToken("root", access.RoleSuperAdmin, "")

	resp := api.post("/v1/access/fac-1", nil, bearerHeader(admin))
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Allow") == "" {
		t.Fatalf("expected Allow header")
	}
}
