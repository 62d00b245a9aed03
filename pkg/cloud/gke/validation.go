package gke

import (
	"regexp"

	"k8s.io/apimachinery/pkg/util/validation/field"

	"github.com/kubeform/kubeform/pkg/cloud"
	"github.com/kubeform/kubeform/pkg/cloud/types"
)

var (
	versionRegex           = regexp.MustCompile(`^[0-9]+[.][0-9]+[.][0-9]+[-]gke[.].+$`)
	cidrRegex              = regexp.MustCompile(`[0-9]{1,3}[.][0-9]{1,3}[.][0-9]{1,3}[.][0-9]{1,3}`)
	maintenanceWindowRegex = regexp.MustCompile(`^[0-9]{2}[:][0-9]{2}([:][0-9]{2})?Z?$`)
)

// ValidateOptions checks a merged spec against every schema constraint and
// returns a ValidationError enumerating all violations, never just the
// first. It runs before any remote call.
func ValidateOptions(spec *types.ClusterSpec) error {
	var errs field.ErrorList

	if spec.Name == "" {
		errs = append(errs, field.Required(field.NewPath("name"), "cluster name is required"))
	} else if len(spec.Name) < 3 || len(spec.Name) > 30 {
		errs = append(errs, field.Invalid(field.NewPath("name"), spec.Name, "must be 3 to 30 characters"))
	}
	if spec.OrganizationID == "" {
		errs = append(errs, field.Required(field.NewPath("organizationId"), "owning organization is required"))
	}
	if spec.BillingAccount == "" {
		errs = append(errs, field.Required(field.NewPath("billingAccount"), "billing account is required"))
	}
	if len(spec.Zones) == 0 {
		errs = append(errs, field.Required(field.NewPath("zones"), "at least one zone is required"))
	}
	if spec.Version != "" && !versionRegex.MatchString(spec.Version) {
		errs = append(errs, field.Invalid(field.NewPath("version"), spec.Version, "must look like 1.11.1-gke.0"))
	}

	errs = append(errs, validateWorker(field.NewPath("worker"), spec.Worker)...)
	errs = append(errs, validateManager(field.NewPath("manager"), spec.Manager)...)

	if types.IsTrue(spec.Flags.AutoScale) {
		if spec.Worker.Min <= 0 || spec.Worker.Max <= 0 {
			errs = append(errs, field.Required(field.NewPath("worker"), "min and max are required when autoScale is set"))
		} else if spec.Worker.Min > spec.Worker.Max {
			errs = append(errs, field.Invalid(field.NewPath("worker", "min"), spec.Worker.Min, "must not exceed worker.max"))
		}
	}

	if len(errs) > 0 {
		return &cloud.ValidationError{Errors: errs}
	}
	return nil
}

func validateWorker(path *field.Path, worker types.WorkerSpec) field.ErrorList {
	var errs field.ErrorList
	if worker.Memory != "" && !sizeRegex.MatchString(worker.Memory) {
		errs = append(errs, field.Invalid(path.Child("memory"), worker.Memory, "must be <number>MB or <number>GB"))
	}
	if worker.Storage.Ephemeral != "" && !sizeRegex.MatchString(worker.Storage.Ephemeral) {
		errs = append(errs, field.Invalid(path.Child("storage", "ephemeral"), worker.Storage.Ephemeral, "must be <number>MB or <number>GB"))
	}
	if worker.Storage.Persistent != "" && !sizeRegex.MatchString(worker.Storage.Persistent) {
		errs = append(errs, field.Invalid(path.Child("storage", "persistent"), worker.Storage.Persistent, "must be <number>MB or <number>GB"))
	}
	if worker.MaintenanceWindow != "" && !maintenanceWindowRegex.MatchString(worker.MaintenanceWindow) {
		errs = append(errs, field.Invalid(path.Child("maintenanceWindow"), worker.MaintenanceWindow, "must look like 08:00:00Z"))
	}
	if worker.Network != nil && worker.Network.Range != "" && !cidrRegex.MatchString(worker.Network.Range) {
		errs = append(errs, field.Invalid(path.Child("network", "range"), worker.Network.Range, "must be an IPv4 CIDR"))
	}
	if worker.Cores < 0 {
		errs = append(errs, field.Invalid(path.Child("cores"), worker.Cores, "must be positive"))
	}
	if worker.Count < 0 {
		errs = append(errs, field.Invalid(path.Child("count"), worker.Count, "must be positive"))
	}
	return errs
}

func validateManager(path *field.Path, manager types.ManagerSpec) field.ErrorList {
	var errs field.ErrorList
	for i, cidr := range manager.Network.AuthorizedCIDR {
		if !cidrRegex.MatchString(cidr.Block) {
			errs = append(errs, field.Invalid(path.Child("network", "authorizedCidr").Index(i), cidr.Block, "must be an IPv4 CIDR"))
		}
	}
	return errs
}
