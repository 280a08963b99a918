package domain

import "testing"

func TestBuildFilename(t *testing.T) {
	tests := []struct {
		name          string
		requestedBase string
		originalName  string
		mime          string
		expected      string
	}{
		{
			name:     "No hints falls back to default",
			mime:     MimePNG,
			expected: "photo-edited.png",
		},
		{
			name:          "Requested base is sanitized",
			requestedBase: "My Report!!",
			mime:          MimeJPEG,
			expected:      "MyReport.jpg",
		},
		{
			name:         "Original name gets extension stripped and suffix",
			originalName: "Holiday Trip.heic",
			mime:         MimeWebP,
			expected:     "HolidayTrip-edited.webp",
		},
		{
			name:          "Requested base wins over original name",
			requestedBase: "custom",
			originalName:  "vacation.jpg",
			mime:          MimeJPEG,
			expected:      "custom.jpg",
		},
		{
			name:          "Requested base empty after sanitize falls back",
			requestedBase: "!!!???",
			mime:          MimeJPEG,
			expected:      "photo-edited.jpg",
		},
		{
			name:         "Original name empty after sanitize falls back",
			originalName: "照片.jpg",
			mime:         MimePNG,
			expected:     "photo-edited.png",
		},
		{
			name:         "Extension never trusted from original name",
			originalName: "photo.exe",
			mime:         MimeJPEG,
			expected:     "photo-edited.jpg",
		},
		{
			name:     "Unknown mime maps to jpg",
			mime:     "application/octet-stream",
			expected: "photo-edited.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := BuildFilename(tt.requestedBase, tt.originalName, tt.mime)
			if result != tt.expected {
				t.Errorf("BuildFilename(%q, %q, %q) = %q, want %q",
					tt.requestedBase, tt.originalName, tt.mime, result, tt.expected)
			}
		})
	}
}
