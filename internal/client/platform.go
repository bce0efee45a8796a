package client

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Masterminds/semver/v3"
	"github.com/fivetwenty-io/aap-client/internal/constants"
	"github.com/fivetwenty-io/aap-client/pkg/aap"
)

// Subscription statuses.
const (
	SubscriptionActive       = "active"
	SubscriptionNonCompliant = "non_compliant"
	SubscriptionExpired      = "expired"
	SubscriptionInvalid      = "invalid"
)

const (
	enterpriseLicenseType      = "enterprise"
	legacyPlatformVersionLabel = "legacy"
)

// PlatformClient implements aap.PlatformClient.
type PlatformClient struct {
	api *apiContext
}

// NewPlatformClient creates a new platform client.
func NewPlatformClient(api *apiContext) *PlatformClient {
	return &PlatformClient{api: api}
}

type pingResponse struct {
	Version string `json:"version"`
}

// Ping implements aap.PlatformClient.Ping. Installations without the
// gateway answer 404 and are served from the legacy API prefix.
func (c *PlatformClient) Ping(ctx context.Context) (*aap.PingInfo, error) {
	resp, err := c.api.httpClient.Get(ctx, constants.GatewayPingPath, nil)
	if aap.IsNotFound(err) {
		return &aap.PingInfo{
			Version:   legacyPlatformVersionLabel,
			Gateway:   false,
			APIPrefix: constants.LegacyAPIPrefix,
		}, nil
	}

	if err != nil {
		return nil, fmt.Errorf("pinging platform: %w", err)
	}

	var ping pingResponse

	err = json.Unmarshal(resp.Body, &ping)
	if err != nil {
		return nil, fmt.Errorf("parsing ping response: %w", err)
	}

	prefix, err := apiPrefixForVersion(ping.Version)
	if err != nil {
		return nil, err
	}

	return &aap.PingInfo{
		Version:   ping.Version,
		Gateway:   true,
		APIPrefix: prefix,
	}, nil
}

// apiPrefixForVersion selects the controller API for a platform version.
func apiPrefixForVersion(version string) (string, error) {
	current, err := semver.NewVersion(version)
	if err != nil {
		return "", fmt.Errorf("parsing platform version %q: %w", version, err)
	}

	minimum := semver.MustParse(constants.GatewayMinimumVersion)
	if current.LessThan(minimum) {
		return constants.LegacyAPIPrefix, nil
	}

	return constants.ControllerAPIPrefix, nil
}

type licenseInfo struct {
	LicenseType      string `json:"license_type"`
	SubscriptionName string `json:"subscription_name"`
	Compliant        *bool  `json:"compliant"`
	DateExpired      bool   `json:"date_expired"`
	ValidKey         *bool  `json:"valid_key"`
}

type configResponse struct {
	Version     string      `json:"version"`
	LicenseInfo licenseInfo `json:"license_info"`
}

// Subscription implements aap.PlatformClient.Subscription.
func (c *PlatformClient) Subscription(ctx context.Context) (*aap.Subscription, error) {
	resp, err := c.api.httpClient.Get(ctx, c.api.endpoint(constants.ConfigEndpoint), nil)
	if err != nil {
		return nil, fmt.Errorf("getting controller config: %w", err)
	}

	var config configResponse

	err = json.Unmarshal(resp.Body, &config)
	if err != nil {
		return nil, fmt.Errorf("parsing controller config: %w", err)
	}

	return subscriptionFromLicense(config.Version, &config.LicenseInfo), nil
}

func subscriptionFromLicense(version string, license *licenseInfo) *aap.Subscription {
	isValid := license.LicenseType == enterpriseLicenseType && !license.DateExpired
	if license.ValidKey != nil && !*license.ValidKey {
		isValid = false
	}

	isCompliant := license.Compliant != nil && *license.Compliant

	var status string

	switch {
	case license.DateExpired:
		status = SubscriptionExpired
	case !isValid:
		status = SubscriptionInvalid
	case !isCompliant:
		status = SubscriptionNonCompliant
	default:
		status = SubscriptionActive
	}

	return &aap.Subscription{
		Status:      status,
		Name:        license.SubscriptionName,
		IsValid:     isValid,
		IsCompliant: isCompliant,
		Version:     version,
	}
}
