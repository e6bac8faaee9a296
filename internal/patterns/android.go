package patterns

import "strings"

// PermissionRule extracts declared permissions from a manifest
var PermissionRule = NewRule("uses-permission", `<uses-permission(?:-sdk-23)?[^>]*\bandroid:name\s*=\s*"([^"]+)"`, 1)

// SensitivePermissions are the permissions that also produce a finding
var SensitivePermissions = []string{
	"android.permission.INTERNET",
	"android.permission.READ_EXTERNAL_STORAGE",
	"android.permission.WRITE_EXTERNAL_STORAGE",
	"android.permission.CAMERA",
	"android.permission.RECORD_AUDIO",
	"android.permission.ACCESS_FINE_LOCATION",
	"android.permission.READ_CONTACTS",
	"android.permission.READ_SMS",
	"android.permission.SEND_SMS",
	"android.permission.RECEIVE_SMS",
}

// IsSensitivePermission reports whether name is on the sensitive list
func IsSensitivePermission(name string) bool {
	for _, p := range SensitivePermissions {
		if p == name {
			return true
		}
	}
	return false
}

// ShortPermission strips the android.permission. prefix
func ShortPermission(name string) string {
	return strings.TrimPrefix(name, "android.permission.")
}

// libraryPrefix turns a dotted package prefix into a rule that also matches
// the slash and smali descriptor forms (com.squareup.okhttp3, com/squareup/okhttp3,
// Lcom/squareup/okhttp3)
func libraryPrefix(name string, prefixes ...string) *Rule {
	alts := make([]string, len(prefixes))
	for i, p := range prefixes {
		alts[i] = strings.ReplaceAll(p, ".", "[./]")
	}
	return NewRule(name, `\bL?(?:`+strings.Join(alts, "|")+`)[./]`, 0)
}

// LibraryRules are the third-party SDK namespace prefixes. The rule name is
// the reported library.
var LibraryRules = []*Rule{
	libraryPrefix("OkHttp", "okhttp3", "com.squareup.okhttp"),
	libraryPrefix("Retrofit", "retrofit2", "com.squareup.retrofit"),
	libraryPrefix("Firebase", "com.google.firebase"),
	libraryPrefix("Facebook SDK", "com.facebook"),
	libraryPrefix("Gson", "com.google.gson"),
	libraryPrefix("RxJava", "io.reactivex"),
	libraryPrefix("Glide", "com.bumptech.glide"),
	libraryPrefix("Picasso", "com.squareup.picasso"),
	libraryPrefix("Google Play Services", "com.google.android.gms"),
	libraryPrefix("Crashlytics", "com.crashlytics", "com.google.firebase.crashlytics"),
	libraryPrefix("Mixpanel", "com.mixpanel"),
	libraryPrefix("Sentry", "io.sentry"),
	libraryPrefix("Stripe", "com.stripe"),
	libraryPrefix("Apache HttpClient", "org.apache.http"),
	libraryPrefix("Volley", "com.android.volley"),
	libraryPrefix("Realm", "io.realm"),
	libraryPrefix("Room", "androidx.room"),
	libraryPrefix("OneSignal", "com.onesignal"),
	libraryPrefix("AppsFlyer", "com.appsflyer"),
	libraryPrefix("Kotlin Coroutines", "kotlinx.coroutines"),
}
