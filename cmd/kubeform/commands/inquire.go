package commands

import (
	"strings"

	"github.com/manifoldco/promptui"
	"github.com/pkg/errors"
	"github.com/spf13/cast"

	"github.com/kubeform/kubeform/cmd/kubeform/utils"
	"github.com/kubeform/kubeform/pkg/cloud"
	"github.com/kubeform/kubeform/pkg/cloud/eks"
	"github.com/kubeform/kubeform/pkg/cloud/gke"
	"github.com/kubeform/kubeform/pkg/cloud/types"
)

// inquireOptions walks through the options a config file would normally
// carry. Anything already set on the boundary config is not asked again.
func inquireOptions(cfg *cloud.Config, opts *types.ClusterSpec) error {
	name, err := runPrompt(&promptui.Prompt{
		Label:    "Cluster name",
		Validate: utils.ValidateMinLength(3),
	})
	if err != nil {
		return err
	}
	opts.Name = name

	if cfg.OrganizationID == "" {
		if opts.OrganizationID, err = runPrompt(&promptui.Prompt{
			Label:    "Organization id",
			Validate: utils.ValidateMinLength(1),
		}); err != nil {
			return err
		}
	}
	if cfg.BillingAccount == "" {
		if opts.BillingAccount, err = runPrompt(&promptui.Prompt{
			Label:    "Billing account",
			Validate: utils.ValidateMinLength(1),
		}); err != nil {
			return err
		}
	}

	zone, err := inquireZone(cfg.Provider)
	if err != nil {
		return err
	}
	opts.Zones = []string{zone}

	cores, err := runPrompt(&promptui.Prompt{
		Label:    "Worker cores",
		Default:  "2",
		Validate: utils.ValidateIntWithLimits(1, -1),
	})
	if err != nil {
		return err
	}
	opts.Worker.Cores = cast.ToInt(cores)

	count, err := runPrompt(&promptui.Prompt{
		Label:    "Worker count",
		Default:  "3",
		Validate: utils.ValidateIntWithLimits(1, -1),
	})
	if err != nil {
		return err
	}
	opts.Worker.Count = cast.ToInt64(count)

	memory, err := runPrompt(&promptui.Prompt{
		Label:   "Worker memory (<number>MB or <number>GB)",
		Default: "13GB",
	})
	if err != nil {
		return err
	}
	opts.Worker.Memory = memory

	return nil
}

func inquireZone(provider string) (string, error) {
	var regions []string
	switch strings.ToUpper(provider) {
	case "EKS":
		regions = eks.GetRegions()
	default:
		regions = gke.GetRegions()
	}

	regionSelect := utils.NewPromptSelect("Region", regions)
	regionSelect.Searcher = utils.SearchFuncFor(regions, false)
	idx, _, err := regionSelect.Run()
	if err != nil {
		return "", err
	}
	region := regions[idx]

	var zones []string
	switch strings.ToUpper(provider) {
	case "EKS":
		zones = eks.GetZones(region)
	default:
		zones = gke.GetZones(region)
	}
	if len(zones) == 0 {
		return "", errors.Errorf("region %s has no zones", region)
	}

	zoneSelect := utils.NewPromptSelect("Zone", zones)
	_, zone, err := zoneSelect.Run()
	return zone, err
}

func runPrompt(prompt *promptui.Prompt) (string, error) {
	utils.FixPromptBell(prompt)
	return prompt.Run()
}
