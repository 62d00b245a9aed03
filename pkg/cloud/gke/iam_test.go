package gke

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	cloudresourcemanager "google.golang.org/api/cloudresourcemanager/v1"
	iam "google.golang.org/api/iam/v1"
	"google.golang.org/api/option"
	serviceusage "google.golang.org/api/serviceusage/v1"

	"github.com/kubeform/kubeform/pkg/cloud"
)

func newTestIAMService(t *testing.T, handler http.HandlerFunc) (*IAMService, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logrus.New().WithField("test", t.Name())
	svc, err := NewIAMService(context.Background(), log,
		option.WithEndpoint(srv.URL),
		option.WithoutAuthentication(),
	)
	require.NoError(t, err)
	// tests observe pauses instead of waiting them out
	svc.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return svc, srv
}

func writeJSON(w http.ResponseWriter, val interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(val)
}

func writeAPIError(w http.ResponseWriter, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{"code": code, "message": message},
	})
}

func TestAddBinding(t *testing.T) {
	policy := &cloudresourcemanager.Policy{}

	assert.True(t, AddBinding(policy, "roles/storage.admin", "serviceAccount:sa@p.iam"))
	require.Len(t, policy.Bindings, 1)
	assert.Equal(t, []string{"serviceAccount:sa@p.iam"}, policy.Bindings[0].Members)

	// same member again changes nothing
	assert.False(t, AddBinding(policy, "roles/storage.admin", "serviceAccount:sa@p.iam"))
	assert.Len(t, policy.Bindings[0].Members, 1)

	// a second member joins the existing binding
	assert.True(t, AddBinding(policy, "roles/storage.admin", "user:dev@example.com"))
	assert.Len(t, policy.Bindings, 1)
	assert.Len(t, policy.Bindings[0].Members, 2)

	// a new role gets its own binding
	assert.True(t, AddBinding(policy, "roles/monitoring.viewer", "serviceAccount:sa@p.iam"))
	assert.Len(t, policy.Bindings, 2)
}

func TestServiceAccountEmail(t *testing.T) {
	assert.Equal(t, "npm-k8s-sa@npm-project.iam.gserviceaccount.com",
		ServiceAccountEmail("npm-project", "npm-k8s-sa"))
}

func TestCreateServiceAccountReturnsExisting(t *testing.T) {
	var createCalled bool
	svc, _ := newTestIAMService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.Contains(r.URL.Path, "/serviceAccounts/"):
			writeJSON(w, &iam.ServiceAccount{Email: "npm-k8s-sa@npm-project.iam.gserviceaccount.com"})
		case r.Method == http.MethodPost:
			createCalled = true
			writeJSON(w, &iam.ServiceAccount{})
		default:
			http.NotFound(w, r)
		}
	})

	account, err := svc.CreateServiceAccount(context.Background(), "npm-project", "npm-k8s-sa", "test")
	require.NoError(t, err)
	assert.Equal(t, "npm-k8s-sa@npm-project.iam.gserviceaccount.com", account.Email)
	assert.False(t, createCalled, "existing account must short-circuit creation")
}

func TestCreateServiceAccountCreatesWhenMissing(t *testing.T) {
	svc, _ := newTestIAMService(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			writeAPIError(w, http.StatusNotFound, "Unknown service account")
		case http.MethodPost:
			var req iam.CreateServiceAccountRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			writeJSON(w, &iam.ServiceAccount{
				Email: ServiceAccountEmail("npm-project", req.AccountId),
			})
		}
	})

	account, err := svc.CreateServiceAccount(context.Background(), "npm-project", "npm-k8s-sa", "test")
	require.NoError(t, err)
	assert.Equal(t, "npm-k8s-sa@npm-project.iam.gserviceaccount.com", account.Email)
}

func TestCreateServiceAccountSurfacesLookupFailure(t *testing.T) {
	svc, _ := newTestIAMService(t, func(w http.ResponseWriter, r *http.Request) {
		writeAPIError(w, http.StatusForbidden, "IAM API not enabled")
	})

	_, err := svc.CreateServiceAccount(context.Background(), "npm-project", "npm-k8s-sa", "test")
	assert.Error(t, err)
}

func TestCreateCredentialsDecodesKeyFile(t *testing.T) {
	keyFile := `{"type":"service_account","project_id":"npm-project","private_key_id":"abc123","client_email":"npm-k8s-sa@npm-project.iam.gserviceaccount.com"}`
	svc, _ := newTestIAMService(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		writeJSON(w, &iam.ServiceAccountKey{
			PrivateKeyData: base64.StdEncoding.EncodeToString([]byte(keyFile)),
		})
	})

	creds, err := svc.CreateCredentials(context.Background(), "npm-project", "npm-k8s-sa@npm-project.iam.gserviceaccount.com")
	require.NoError(t, err)
	assert.Equal(t, "service_account", creds.Type)
	assert.Equal(t, "npm-project", creds.ProjectID)
	assert.Equal(t, "abc123", creds.PrivateKeyID)
	assert.Equal(t, "npm-k8s-sa@npm-project.iam.gserviceaccount.com", creds.ClientEmail)
}

func TestEnableServiceWaitsForOperation(t *testing.T) {
	var polls int
	svc, _ := newTestIAMService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, ":enable"):
			writeJSON(w, &serviceusage.Operation{Name: "operations/enable-compute", Done: false})
		case strings.Contains(r.URL.Path, "operations/enable-compute"):
			polls++
			writeJSON(w, &serviceusage.Operation{Name: "operations/enable-compute", Done: polls >= 2})
		default:
			http.NotFound(w, r)
		}
	})

	err := svc.EnableService(context.Background(), "npm-project", "compute.googleapis.com")
	require.NoError(t, err)
	assert.Equal(t, 2, polls)
}

func TestEnableServiceSurfacesFailedOperationPoll(t *testing.T) {
	svc, _ := newTestIAMService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, ":enable"):
			writeJSON(w, &serviceusage.Operation{Name: "operations/enable-compute", Done: false})
		case strings.Contains(r.URL.Path, "operations/enable-compute"):
			writeAPIError(w, http.StatusBadRequest, "operation lookup rejected")
		default:
			http.NotFound(w, r)
		}
	})

	err := svc.EnableService(context.Background(), "npm-project", "compute.googleapis.com")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to check service operation operations/enable-compute")
}

func TestAssignRolesRetriesOnPolicyConflict(t *testing.T) {
	var gets, sets int
	var sleeps []time.Duration

	svc, _ := newTestIAMService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, ":getIamPolicy"):
			gets++
			etag := "etag-0"
			if sets > 0 {
				etag = fmt.Sprintf("etag-%d", sets)
			}
			writeJSON(w, &cloudresourcemanager.Policy{Etag: etag})
		case strings.HasSuffix(r.URL.Path, ":setIamPolicy"):
			sets++
			if sets == 1 {
				writeAPIError(w, http.StatusConflict,
					"There were concurrent policy changes. Please retry the whole read-modify-write with exponential backoff.")
				return
			}
			writeJSON(w, &cloudresourcemanager.Policy{Etag: fmt.Sprintf("etag-%d", sets)})
		default:
			http.NotFound(w, r)
		}
	})
	svc.sleep = func(ctx context.Context, d time.Duration) error {
		sleeps = append(sleeps, d)
		return nil
	}

	policy, err := svc.AssignRoles(context.Background(), "npm-project",
		"serviceAccount", "sa@npm-project.iam.gserviceaccount.com",
		[]string{"roles/storage.objectViewer"})
	require.NoError(t, err)
	require.NotNil(t, policy)

	assert.Equal(t, 2, sets, "one rejected write plus one successful write")
	// initial read, re-read after the conflict, etag confirmation
	assert.Equal(t, 3, gets)
	assert.Contains(t, sleeps, cloud.PolicyRetryDelay)
}

func TestAssignRolesConsumesRolesFromTheEnd(t *testing.T) {
	var assigned []string
	svc, _ := newTestIAMService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, ":getIamPolicy"):
			writeJSON(w, &cloudresourcemanager.Policy{Etag: fmt.Sprintf("etag-%d", len(assigned))})
		case strings.HasSuffix(r.URL.Path, ":setIamPolicy"):
			var req cloudresourcemanager.SetIamPolicyRequest
			_ = json.NewDecoder(r.Body).Decode(&req)
			last := req.Policy.Bindings[len(req.Policy.Bindings)-1]
			assigned = append(assigned, last.Role)
			writeJSON(w, req.Policy)
		default:
			http.NotFound(w, r)
		}
	})

	_, err := svc.AssignRoles(context.Background(), "npm-project",
		"serviceAccount", "sa@npm-project.iam.gserviceaccount.com",
		[]string{"roles/a", "roles/b", "roles/c"})
	require.NoError(t, err)

	assert.Equal(t, []string{"roles/c", "roles/b", "roles/a"}, assigned)
}

func TestAssignRolesGivesUpAfterRetryBudget(t *testing.T) {
	var sets int
	svc, _ := newTestIAMService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, ":getIamPolicy"):
			writeJSON(w, &cloudresourcemanager.Policy{Etag: "etag-0"})
		case strings.HasSuffix(r.URL.Path, ":setIamPolicy"):
			sets++
			writeAPIError(w, http.StatusConflict, "please retry")
		default:
			http.NotFound(w, r)
		}
	})

	_, err := svc.AssignRoles(context.Background(), "npm-project",
		"serviceAccount", "sa@npm-project.iam.gserviceaccount.com",
		[]string{"roles/a"})
	require.Error(t, err)

	var exhausted *cloud.RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, cloud.MaxTransientRetries, sets)
}

func TestAssignRolesSurfacesFatalWriteError(t *testing.T) {
	svc, _ := newTestIAMService(t, func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, ":getIamPolicy"):
			writeJSON(w, &cloudresourcemanager.Policy{Etag: "etag-0"})
		case strings.HasSuffix(r.URL.Path, ":setIamPolicy"):
			writeAPIError(w, http.StatusForbidden, "caller lacks resourcemanager.projects.setIamPolicy")
		default:
			http.NotFound(w, r)
		}
	})

	_, err := svc.AssignRoles(context.Background(), "npm-project",
		"serviceAccount", "sa@npm-project.iam.gserviceaccount.com",
		[]string{"roles/a"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to assign roles/a")
}
