package fetch

import (
	"net/url"
	"strings"
)

// Platform represents a known job board platform.
type Platform string

// Known platforms.
const (
	PlatformGreenhouse Platform = "greenhouse"
	PlatformLever      Platform = "lever"
	PlatformWorkday    Platform = "workday"
	PlatformAshby      Platform = "ashby"
	PlatformUnknown    Platform = "unknown"
)

type platformRule struct {
	platform Platform
	hosts    []string
	content  []string
	noise    []string
}

var platformRules = []platformRule{
	{
		platform: PlatformGreenhouse,
		hosts:    []string{"greenhouse.io"},
		content:  []string{".job__description.body", ".job__description", ".job-description__content", "#content", ".job-post-container"},
		noise:    []string{".application--wrapper", ".voluntary-self-id", "#usa_self_id_section", ".post-apply"},
	},
	{
		platform: PlatformLever,
		hosts:    []string{"lever.co"},
		content:  []string{".posting-page", ".section-wrapper.page-full-width", ".posting-description", ".content"},
		noise:    []string{".apply-section", ".lever-application-form", ".posting-apply"},
	},
	{
		platform: PlatformWorkday,
		hosts:    []string{"workday.com", "myworkdayjobs.com"},
		content:  []string{"[data-automation-id='jobPostingDescription']", "[data-automation-id='jobDescription']", ".job-description"},
		noise:    []string{"[data-automation-id='applyButton']", ".application-section"},
	},
	{
		platform: PlatformAshby,
		hosts:    []string{"ashbyhq.com"},
		content:  []string{"._descriptionText_", "[class*='descriptionText']", "main"},
		noise:    []string{"[class*='applicationForm']"},
	},
}

// commonNoise is removed on every platform: application forms, EEO and
// legal notices, share buttons and consent banners.
var commonNoise = []string{
	"form",
	"#application-form",
	".application-form",
	".apply-button-container",
	".voluntary-disclosure",
	".eeo-statement",
	".eeo-section",
	".legal-disclosure",
	".social-share",
	".share-buttons",
	".cookie-consent",
	".gdpr-notice",
}

// DetectPlatform identifies the job board platform from a URL.
func DetectPlatform(urlStr string) Platform {
	if rule, ok := ruleFor(urlStr); ok {
		return rule.platform
	}
	return PlatformUnknown
}

// PlatformContentSelectors returns content selectors for a platform.
func PlatformContentSelectors(platform Platform) []string {
	for _, rule := range platformRules {
		if rule.platform == platform {
			return rule.content
		}
	}
	return JobPostingSelectors()
}

// PlatformNoiseSelectors returns the noise selectors for a platform.
func PlatformNoiseSelectors(platform Platform) []string {
	noise := append([]string(nil), commonNoise...)
	for _, rule := range platformRules {
		if rule.platform == platform {
			noise = append(noise, rule.noise...)
		}
	}
	return noise
}

func ruleFor(urlStr string) (platformRule, bool) {
	parsed, err := url.Parse(urlStr)
	if err != nil {
		return platformRule{}, false
	}
	host := strings.ToLower(parsed.Hostname())
	for _, rule := range platformRules {
		for _, h := range rule.hosts {
			if host == h || strings.HasSuffix(host, "."+h) {
				return rule, true
			}
		}
	}
	return platformRule{}, false
}
