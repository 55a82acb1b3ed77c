package profile

// File is the on-disk shape of a header profile.
//
//	timeout: 10s
//	parseHtmlRefresh: false
//	headers:
//	  User-Agent: Mozilla/5.0 ...
//	platforms:
//	  douyin:
//	    Referer: https://www.douyin.com/
type File struct {
	Timeout          string                       `yaml:"timeout,omitempty"`
	ParseHTMLRefresh *bool                        `yaml:"parseHtmlRefresh,omitempty"`
	Headers          map[string]string            `yaml:"headers,omitempty"`
	Platforms        map[string]map[string]string `yaml:"platforms,omitempty"`
}
