// Package trueachievements provides the minimal TrueAchievements client used
// to download game-collection exports.
//
// The service offers no API; the export endpoint is the same CSV download a
// browser session performs, authenticated by the TrueGamingIdentity cookie.
// The client reports auth rejections distinctly so the refresh controller can
// stop polling until the token is replaced, and ValidExport separates genuine
// exports from login pages served with status 200. Options allow tests to
// supply custom base URLs and HTTP clients.
package trueachievements
