package ports

// serviceNames maps TCP ports to their nmap-services names.
var serviceNames = map[uint16]string{
	1:     "tcpmux",
	7:     "echo",
	9:     "discard",
	13:    "daytime",
	17:    "qotd",
	19:    "chargen",
	20:    "ftp-data",
	21:    "ftp",
	22:    "ssh",
	23:    "telnet",
	25:    "smtp",
	26:    "rsftp",
	37:    "time",
	43:    "whois",
	49:    "tacacs",
	53:    "domain",
	70:    "gopher",
	79:    "finger",
	80:    "http",
	81:    "hosts2-ns",
	82:    "xfer",
	83:    "mit-ml-dev",
	84:    "ctf",
	85:    "mit-ml-dev",
	88:    "kerberos-sec",
	89:    "su-mit-tg",
	90:    "dnsix",
	99:    "metagram",
	100:   "newacct",
	106:   "pop3pw",
	109:   "pop2",
	110:   "pop3",
	111:   "rpcbind",
	113:   "ident",
	119:   "nntp",
	135:   "msrpc",
	139:   "netbios-ssn",
	143:   "imap",
	144:   "news",
	161:   "snmp",
	163:   "cmip-man",
	179:   "bgp",
	199:   "smux",
	211:   "914c-g",
	222:   "rsh-spx",
	389:   "ldap",
	427:   "svrloc",
	443:   "https",
	444:   "snpp",
	445:   "microsoft-ds",
	464:   "kpasswd5",
	465:   "smtps",
	497:   "retrospect",
	500:   "isakmp",
	512:   "exec",
	513:   "login",
	514:   "shell",
	515:   "printer",
	524:   "ncp",
	543:   "klogin",
	544:   "kshell",
	548:   "afp",
	554:   "rtsp",
	563:   "snews",
	587:   "submission",
	593:   "http-rpc-epmap",
	631:   "ipp",
	636:   "ldapssl",
	646:   "ldp",
	873:   "rsync",
	902:   "iss-realsecure",
	990:   "ftps",
	992:   "telnets",
	993:   "imaps",
	995:   "pop3s",
	1025:  "NFS-or-IIS",
	1026:  "LSA-or-nterm",
	1027:  "IIS",
	1029:  "ms-lsa",
	1080:  "socks",
	1110:  "nfsd-status",
	1194:  "openvpn",
	1433:  "ms-sql-s",
	1434:  "ms-sql-m",
	1494:  "citrix-ica",
	1521:  "oracle",
	1720:  "h323q931",
	1723:  "pptp",
	1755:  "wms",
	1900:  "upnp",
	2000:  "cisco-sccp",
	2001:  "dc",
	2049:  "nfs",
	2121:  "ccproxy-ftp",
	2222:  "EtherNetIP-1",
	2375:  "docker",
	2717:  "pn-requester",
	3000:  "ppp",
	3128:  "squid-http",
	3306:  "mysql",
	3389:  "ms-wbt-server",
	3690:  "svn",
	3986:  "mapper-ws_ethd",
	4899:  "radmin",
	5000:  "upnp",
	5009:  "airport-admin",
	5051:  "ida-agent",
	5060:  "sip",
	5101:  "admdog",
	5190:  "aol",
	5222:  "xmpp-client",
	5357:  "wsdapi",
	5432:  "postgresql",
	5631:  "pcanywheredata",
	5666:  "nrpe",
	5800:  "vnc-http",
	5900:  "vnc",
	5901:  "vnc-1",
	5984:  "couchdb",
	6000:  "X11",
	6001:  "X11:1",
	6379:  "redis",
	6667:  "irc",
	7070:  "realserver",
	8000:  "http-alt",
	8008:  "http",
	8009:  "ajp13",
	8080:  "http-proxy",
	8081:  "blackice-icecap",
	8443:  "https-alt",
	8888:  "sun-answerbook",
	9090:  "zeus-admin",
	9100:  "jetdirect",
	9200:  "wap-wsp",
	9418:  "git",
	9999:  "abyss",
	10000: "snet-sensor-mgmt",
	11211: "memcache",
	27017: "mongod",
	32768: "filenet-tms",
}
