package mqtt

import "testing"

func TestTopicBuilders(t *testing.T) {
	tests := []struct {
		name     string
		builder  func() string
		expected string
	}{
		{
			name: "ExtensionCommand",
			builder: func() string {
				return Topics{}.ExtensionCommand(9184, 111, 1)
			},
			expected: "hearth/command/9184/111/1",
		},
		{
			name: "ExtensionCommandHubService",
			builder: func() string {
				return Topics{}.ExtensionCommand(512, 100, 11)
			},
			expected: "hearth/command/512/100/11",
		},
		{
			name: "ExtensionReport",
			builder: func() string {
				return Topics{}.ExtensionReport(111, 4)
			},
			expected: "hearth/report/111/4",
		},
		{
			name: "SystemStatus",
			builder: func() string {
				return Topics{}.SystemStatus()
			},
			expected: "hearth/system/status",
		},
		{
			name: "SystemShutdown",
			builder: func() string {
				return Topics{}.SystemShutdown()
			},
			expected: "hearth/system/shutdown",
		},
		{
			name: "AllReports",
			builder: func() string {
				return Topics{}.AllReports()
			},
			expected: "hearth/report/+/+",
		},
		{
			name: "AllCommands",
			builder: func() string {
				return Topics{}.AllCommands()
			},
			expected: "hearth/command/+/+/+",
		},
		{
			name: "AllTopics",
			builder: func() string {
				return Topics{}.AllTopics()
			},
			expected: "hearth/#",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := tt.builder()
			if result != tt.expected {
				t.Errorf("%s() = %q, want %q", tt.name, result, tt.expected)
			}
		})
	}
}
