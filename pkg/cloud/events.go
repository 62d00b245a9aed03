package cloud

import (
	"github.com/sirupsen/logrus"
)

// Lifecycle events emitted during a provisioning run, in workflow order.
const (
	EventPrerequisitesCreated = "prerequisites-created"
	EventBucketPermissionsSet = "bucket-permissions-set"
	EventClusterInitialized   = "cluster-initialized"
)

// PrerequisitesPayload reports which prerequisite steps completed before
// bucket and cluster work began.
type PrerequisitesPayload struct {
	Provider      string   `json:"provider"`
	Prerequisites []string `json:"prerequisites"`
}

// BucketPermissionsPayload reports which buckets the cluster's service
// account was granted access to.
type BucketPermissionsPayload struct {
	ReadAccess  []string `json:"readAccess"`
	WriteAccess []string `json:"writeAccess"`
}

// ClusterInitializedPayload carries the provider-specific request the cluster
// was created from.
type ClusterInitializedPayload struct {
	KubernetesCluster interface{} `json:"kubernetesCluster"`
}

// Observer receives lifecycle events. Events are informational: emission is
// synchronous and ordered, but no observer may block or abort the workflow.
type Observer interface {
	Emit(event string, payload interface{})
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc func(event string, payload interface{})

func (f ObserverFunc) Emit(event string, payload interface{}) {
	f(event, payload)
}

// NopObserver discards all events.
func NopObserver() Observer {
	return ObserverFunc(func(string, interface{}) {})
}

// SafeEmit delivers an event to obs, swallowing any panic so a misbehaving
// observer can never abort a provisioning run.
func SafeEmit(obs Observer, log *logrus.Entry, event string, payload interface{}) {
	if obs == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil && log != nil {
			log.WithField("event", event).Warnf("observer panicked: %v", r)
		}
	}()
	obs.Emit(event, payload)
}
