// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package archive stores rendered report exports.

# Drivers

  - fs: files under a root directory (ARCHIVE_DIR)
  - s3: an S3 or MinIO bucket via aws-sdk-go-v2 (ARCHIVE_S3_BUCKET, ARCHIVE_S3_REGION,
    ARCHIVE_S3_ENDPOINT, ARCHIVE_S3_PATH_STYLE; credentials from the default AWS chain)
  - memory: process memory, for tests
  - none: archiving disabled; Open returns a nil Store

# Keys

Reports are stored under reports/<kind>/<kind>_<YYYY-MM-DD>.html. Put refuses
to overwrite an existing key and returns ErrExists, so an export archived
twice on the same day is reported as a conflict instead of silently replaced.
*/
package archive
