package request

import "strings"

// Form carries the raw fields of a web form submission.
type Form struct {
	Singer   string
	Videos   string
	Duration string
	Email    string
	Uploads  []Upload
}

// ParseForm validates a form submission. Uploaded files switch the request
// to upload mode, in which the singer and video count are ignored. A valid
// recipient address is always required because the web flow delivers by
// email.
func ParseForm(form Form, bounds Bounds, outputName string) (Request, error) {
	var req Request

	uploads := make([]Upload, 0, len(form.Uploads))
	for _, upload := range form.Uploads {
		if strings.TrimSpace(upload.Name) == "" {
			continue
		}
		uploads = append(uploads, upload)
	}

	if len(uploads) > 0 {
		seconds, err := parseInt(form.Duration)
		if err != nil {
			return Request{}, invalid("AudioDuration must be an integer.")
		}
		req = Request{Mode: ModeUpload, TrimSeconds: seconds, Uploads: uploads}
	} else {
		if strings.TrimSpace(form.Singer) == "" {
			return Request{}, invalid("Please enter a singer name or upload at least one audio file.")
		}
		count, errCount := parseInt(form.Videos)
		seconds, errDuration := parseInt(form.Duration)
		if errCount != nil || errDuration != nil {
			return Request{}, invalid("NumberOfVideos and AudioDuration must be integers.")
		}
		req = Request{
			Mode:        ModeSearch,
			Performer:   strings.TrimSpace(form.Singer),
			Count:       count,
			TrimSeconds: seconds,
		}
		if err := validateSearch(req, bounds); err != nil {
			return Request{}, err
		}
	}

	if err := validateDuration(req.TrimSeconds, bounds); err != nil {
		return Request{}, err
	}
	if strings.TrimSpace(form.Email) == "" {
		return Request{}, invalid("Please provide a valid email address.")
	}
	req, err := WithRecipient(req, form.Email)
	if err != nil {
		return Request{}, err
	}
	req.Output = outputName
	return req, nil
}
