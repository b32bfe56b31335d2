package config

import "os"

// MediaConfig holds the settings for the S3-compatible object store used to
// host uploaded videos, thumbnails and profile images.  An empty Bucket
// disables uploads entirely; handlers then reject multipart media with a
// server error rather than leaving files stranded in the temp directory.
type MediaConfig struct {
    Bucket       string // bucket name; empty disables media uploads
    Region       string // AWS region or placeholder for MinIO
    Endpoint     string // custom endpoint (MinIO / localstack); empty uses AWS default
    AccessKey    string // static access key; empty falls back to the default credential chain
    SecretKey    string // static secret key
    PublicBaseURL string // base URL prepended to object keys when building durable URLs
}

// LoadMediaConfig reads media storage settings from the environment.  None
// of the variables are strictly required so that the service can run without
// an object store in development; upload endpoints fail gracefully instead.
func LoadMediaConfig() MediaConfig {
    return MediaConfig{
        Bucket:        os.Getenv("MEDIA_BUCKET"),
        Region:        getenv("MEDIA_REGION", "us-east-1"),
        Endpoint:      os.Getenv("MEDIA_ENDPOINT"),
        AccessKey:     os.Getenv("MEDIA_ACCESS_KEY"),
        SecretKey:     os.Getenv("MEDIA_SECRET_KEY"),
        PublicBaseURL: os.Getenv("MEDIA_PUBLIC_BASE_URL"),
    }
}
